package entity

// RequestContext identidad explícita de la petición (empresa y usuario) que se pasa
// a cada operación del núcleo en lugar de leerla de una sesión global.
type RequestContext struct {
	CompanyID int64
	UserID    int64
}

// Valid indica si la petición trae empresa y usuario.
func (rc RequestContext) Valid() bool {
	return rc.CompanyID > 0 && rc.UserID > 0
}
