package response

import "karaoke-booking/internal/data/entity"

type BusinessHoursResponse struct {
	DayOfWeek int    `json:"day_of_week"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
	IsClosed  bool   `json:"is_closed"`
}

func BusinessHoursToResponse(hours []*entity.BusinessHours) []BusinessHoursResponse {
	out := make([]BusinessHoursResponse, 0, len(hours))
	for _, h := range hours {
		out = append(out, BusinessHoursResponse{
			DayOfWeek: h.DayOfWeek,
			OpenTime:  h.OpenTime,
			CloseTime: h.CloseTime,
			IsClosed:  h.IsClosed,
		})
	}
	return out
}
