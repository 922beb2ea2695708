package request

type BusinessHoursDay struct {
	DayOfWeek *int   `json:"day_of_week" validate:"required,min=0,max=6"`
	OpenTime  string `json:"open_time" validate:"required,datetime=15:04"`
	CloseTime string `json:"close_time" validate:"required,datetime=15:04"`
	IsClosed  bool   `json:"is_closed"`
}

type UpdateBusinessHoursRequest struct {
	Days []BusinessHoursDay `json:"days" validate:"required,len=7,dive"`
}
