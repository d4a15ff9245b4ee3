package roomhandler

type BindRoomBody struct {
	Name   string `json:"name"   example:"alice"`
	Code   string `json:"code"   example:"ABCD"`
	Create bool   `json:"create" example:"false"`
} // @name BindRoomRequest

type ErrorResponse struct {
	Error string `json:"error"`
} // @name ErrorResponse
