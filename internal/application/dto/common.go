package dto

// ErrorResponse cuerpo de error: código estable legible por máquina + mensaje humano.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Envelope sobre etiquetado de todas las respuestas: éxito con data o fallo con error.
type Envelope struct {
	Success bool           `json:"success"`
	Data    interface{}    `json:"data,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

// OK envuelve una respuesta exitosa.
func OK(data interface{}) Envelope {
	return Envelope{Success: true, Data: data}
}

// Fail envuelve un error.
func Fail(code, message string) Envelope {
	return Envelope{Success: false, Error: &ErrorResponse{Code: code, Message: message}}
}
