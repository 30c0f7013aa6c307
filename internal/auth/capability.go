package auth

import (
	"github.com/spec-kit/community-bot/internal/config"
)

// Capabilities are the permission flags derived from a member's roles.
type Capabilities struct {
	IsAdmin           bool
	IsStaff           bool
	IsHighCommand     bool
	IsHighCommandPlus bool
	IsStaffing        bool
	IsOwnership       bool
	IsBooster         bool
}

// CanCloseTickets reports whether the holder may close any ticket.
func (c Capabilities) CanCloseTickets() bool {
	return c.IsStaff || c.IsStaffing
}

// RoleTable maps deployment role ids to capabilities.
type RoleTable struct {
	admin       map[string]struct{}
	highCommand map[string]struct{}
	ownership   map[string]struct{}
	staffTeam   map[string]struct{}
	booster     map[string]struct{}

	cfg config.RolesConfig
}

// NewRoleTable builds the lookup sets from configuration.
func NewRoleTable(cfg config.RolesConfig) *RoleTable {
	return &RoleTable{
		admin:       toSet(cfg.Admin),
		highCommand: toSet(cfg.HighCommand),
		ownership:   toSet(cfg.Ownership),
		staffTeam:   toSet(cfg.StaffTeam),
		booster:     toSet(cfg.Booster),
		cfg:         cfg,
	}
}

// CapabilitiesOf derives capabilities from a role id set. It never fails:
// unknown or empty role sets yield the zero value.
func (t *RoleTable) CapabilitiesOf(roleIDs []string) Capabilities {
	var admin, hc, owner, staff, booster bool
	for _, id := range roleIDs {
		admin = admin || contains(t.admin, id)
		hc = hc || contains(t.highCommand, id)
		owner = owner || contains(t.ownership, id)
		staff = staff || contains(t.staffTeam, id)
		booster = booster || contains(t.booster, id)
	}
	return Capabilities{
		IsAdmin:           admin,
		IsStaff:           admin || hc || owner,
		IsHighCommand:     hc,
		IsHighCommandPlus: hc || owner || admin,
		IsStaffing:        staff,
		IsOwnership:       owner,
		IsBooster:         booster,
	}
}

// StaffRoleIDs are the roles granted access to every new ticket.
func (t *RoleTable) StaffRoleIDs() []string {
	return concat(t.cfg.Admin, t.cfg.HighCommand, t.cfg.Ownership, t.cfg.StaffTeam)
}

// ResponderRoleIDs keep send permission once a ticket is claimed.
func (t *RoleTable) ResponderRoleIDs() []string {
	return concat(t.cfg.HighCommand, t.cfg.Ownership, t.cfg.Admin)
}

// ObserverRoleIDs are staff roles reduced to read-only once a ticket is
// claimed. Roles that also appear among the responders are excluded.
func (t *RoleTable) ObserverRoleIDs() []string {
	responders := toSet(t.ResponderRoleIDs())
	var out []string
	for _, id := range t.cfg.StaffTeam {
		if !contains(responders, id) {
			out = append(out, id)
		}
	}
	return out
}

// PingRoleIDs are mentioned when a ticket opens.
func (t *RoleTable) PingRoleIDs() []string {
	return concat(t.cfg.StaffTeam, t.cfg.Ownership)
}

// CivilianRoleIDs are mentioned when a session is released.
func (t *RoleTable) CivilianRoleIDs() []string {
	return concat(t.cfg.Civilian)
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func contains(set map[string]struct{}, id string) bool {
	_, ok := set[id]
	return ok
}

func concat(lists ...[]string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, list := range lists {
		for _, id := range list {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
