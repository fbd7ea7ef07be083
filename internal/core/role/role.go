// Package role defines the role enum and its capability sets.
// Authorization decisions go through Role.Can; handlers and services never
// compare profile display names.
package role

// Role identifies a user profile within a company.
type Role string

const (
	Admin     Role = "Admin"
	Direction Role = "Direction"
	Controle  Role = "Contrôle"
	Agence    Role = "Agence"
	Agent     Role = "Agent"
)

// Action is a capability that a role may hold.
type Action string

const (
	ActionCreateDemande       Action = "demande:create"
	ActionValidateDemande     Action = "demande:validate"
	ActionListCompanyDemandes Action = "demande:list_company"
	ActionConfirmSortie       Action = "sortie:confirm"
	ActionRejectSortie        Action = "sortie:reject"
	ActionRecordEntree        Action = "stock:entree"
	ActionViewStock           Action = "stock:view"
	ActionManageProducts      Action = "product:manage"
	ActionManageCatalogs      Action = "catalog:manage"
)

// capabilities maps each role to its allowed actions.
// Sortie confirmation is restricted to Direction and Admin: the historical API
// let any authenticated company member confirm, but the documented intent is
// "Direction ou Admin" and that is what we enforce.
var capabilities = map[Role]map[Action]struct{}{
	Admin: actionSet(
		ActionCreateDemande, ActionValidateDemande, ActionListCompanyDemandes,
		ActionConfirmSortie, ActionRejectSortie,
		ActionRecordEntree, ActionViewStock,
		ActionManageProducts, ActionManageCatalogs,
	),
	Direction: actionSet(
		ActionCreateDemande,
		ActionConfirmSortie, ActionRejectSortie,
		ActionViewStock,
	),
	Controle: actionSet(
		ActionCreateDemande, ActionViewStock,
	),
	Agence: actionSet(
		ActionCreateDemande, ActionViewStock,
	),
	Agent: actionSet(
		ActionCreateDemande,
	),
}

func actionSet(actions ...Action) map[Action]struct{} {
	set := make(map[Action]struct{}, len(actions))
	for _, a := range actions {
		set[a] = struct{}{}
	}
	return set
}

// Can reports whether the role holds the given capability.
// Unknown roles hold nothing.
func (r Role) Can(action Action) bool {
	set, ok := capabilities[r]
	if !ok {
		return false
	}
	_, ok = set[action]
	return ok
}

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	_, ok := capabilities[r]
	return ok
}

// Parse returns the Role for the given name, or ok=false.
func Parse(name string) (Role, bool) {
	r := Role(name)
	return r, r.IsValid()
}
