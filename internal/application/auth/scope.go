package auth

import "github.com/jhoicas/hub-inventory/internal/domain/entity"

// Principal identidad del caller tal como la entrega el token.
type Principal struct {
	UserID   string
	Username string
	Role     string
	HubID    string
}

// IsAdmin indica superusuario.
func (p Principal) IsAdmin() bool { return p.Role == entity.RoleAdmin }

// Scope hubs visibles para el caller: todos para ADMIN, su hub para el resto, ninguno si no tiene hub.
func (p Principal) Scope() Scope {
	if p.IsAdmin() {
		return Scope{All: true}
	}
	if p.HubID == "" {
		return Scope{HubIDs: []string{}}
	}
	return Scope{HubIDs: []string{p.HubID}}
}

// Scope conjunto de hubs visibles.
type Scope struct {
	All    bool
	HubIDs []string
}

// Allows indica si hubID es visible.
func (s Scope) Allows(hubID string) bool {
	if s.All {
		return true
	}
	for _, id := range s.HubIDs {
		if id == hubID {
			return true
		}
	}
	return false
}

// Filter devuelve el filtro para los repositorios: nil = todos, slice vacío = ninguno.
func (s Scope) Filter() []string {
	if s.All {
		return nil
	}
	if s.HubIDs == nil {
		return []string{}
	}
	return s.HubIDs
}

// Key identifica el scope en claves de caché.
func (s Scope) Key() string {
	if s.All {
		return "all"
	}
	if len(s.HubIDs) == 0 {
		return "none"
	}
	key := ""
	for i, id := range s.HubIDs {
		if i > 0 {
			key += ","
		}
		key += id
	}
	return key
}
