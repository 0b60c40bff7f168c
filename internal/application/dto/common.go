package dto

// ErrorResponse cuerpo de error HTTP. Field y Line solo vienen en errores de validación.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Line    int    `json:"line,omitempty"`
}
