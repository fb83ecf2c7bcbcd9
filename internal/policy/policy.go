// Package policy narrows queries to what the requesting principal may see.
package policy

import (
	"errors"
	"fmt"

	"github.com/yukikurage/agency-hub/internal/models"
	"gorm.io/gorm"
)

var ErrUnknownRole = errors.New("unknown role")

// Principal is the authenticated identity carried by a request.
type Principal struct {
	UserID   uint64
	Role     models.Role
	AgencyID *uint64
	ClientID *uint64
}

// Agency returns the tenant id, or 0 when the principal is not bound to one.
func (p Principal) Agency() uint64 {
	if p.AgencyID == nil {
		return 0
	}
	return *p.AgencyID
}

// Client returns the client id, or 0 when the principal has none.
func (p Principal) Client() uint64 {
	if p.ClientID == nil {
		return 0
	}
	return *p.ClientID
}

func (p Principal) IsOwner() bool  { return p.Role == models.RoleOwner }
func (p Principal) IsMember() bool { return p.Role == models.RoleMember }
func (p Principal) IsClient() bool { return p.Role == models.RoleClient }

// Scope is a per-role query narrowing strategy.
type Scope interface {
	Projects(db *gorm.DB) *gorm.DB
	Tasks(db *gorm.DB) *gorm.DB
	Invoices(db *gorm.DB) *gorm.DB
	// ChatPeers lists the roles this principal may open a conversation with.
	ChatPeers() []models.Role
}

var strategies = map[models.Role]func(Principal) Scope{
	models.RoleOwner:  func(p Principal) Scope { return ownerScope{p} },
	models.RoleMember: func(p Principal) Scope { return memberScope{p} },
	models.RoleClient: func(p Principal) Scope { return clientScope{p} },
}

// For selects the scoping strategy for the principal's role.
func For(p Principal) (Scope, error) {
	build, ok := strategies[p.Role]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, p.Role)
	}
	return build(p), nil
}

func none(db *gorm.DB) *gorm.DB {
	return db.Where("1 = 0")
}

func projectsOfAgency(db *gorm.DB, agencyID uint64) *gorm.DB {
	return db.Where("projects.agency_id = ?", agencyID)
}

// tasksOfAgency keeps tasks whose project still exists and belongs to the agency.
func tasksOfAgency(db *gorm.DB, agencyID uint64) *gorm.DB {
	return db.Where("tasks.project_id IN (SELECT projects.id FROM projects WHERE projects.agency_id = ?)", agencyID)
}

type ownerScope struct{ p Principal }

func (s ownerScope) Projects(db *gorm.DB) *gorm.DB {
	if s.p.AgencyID == nil {
		return none(db)
	}
	return projectsOfAgency(db, s.p.Agency())
}

func (s ownerScope) Tasks(db *gorm.DB) *gorm.DB {
	if s.p.AgencyID == nil {
		return none(db)
	}
	return tasksOfAgency(db, s.p.Agency())
}

func (s ownerScope) Invoices(db *gorm.DB) *gorm.DB {
	if s.p.AgencyID == nil {
		return none(db)
	}
	return db.Where("invoices.agency_id = ?", s.p.Agency())
}

func (ownerScope) ChatPeers() []models.Role {
	return []models.Role{models.RoleMember, models.RoleClient}
}

type memberScope struct{ p Principal }

func (s memberScope) Projects(db *gorm.DB) *gorm.DB {
	if s.p.AgencyID == nil {
		return none(db)
	}
	return projectsOfAgency(db, s.p.Agency())
}

func (s memberScope) Tasks(db *gorm.DB) *gorm.DB {
	if s.p.AgencyID == nil {
		return none(db)
	}
	return tasksOfAgency(db, s.p.Agency()).
		Where("EXISTS (SELECT 1 FROM task_assignments WHERE task_assignments.task_id = tasks.id AND task_assignments.user_id = ?)", s.p.UserID)
}

func (memberScope) Invoices(db *gorm.DB) *gorm.DB {
	return none(db)
}

func (memberScope) ChatPeers() []models.Role {
	return []models.Role{models.RoleOwner, models.RoleMember}
}

type clientScope struct{ p Principal }

func (s clientScope) Projects(db *gorm.DB) *gorm.DB {
	if s.p.AgencyID == nil || s.p.ClientID == nil {
		return none(db)
	}
	return projectsOfAgency(db, s.p.Agency()).Where("projects.client_id = ?", s.p.Client())
}

func (s clientScope) Tasks(db *gorm.DB) *gorm.DB {
	if s.p.AgencyID == nil || s.p.ClientID == nil {
		return none(db)
	}
	return db.Where("tasks.project_id IN (SELECT projects.id FROM projects WHERE projects.agency_id = ? AND projects.client_id = ?)", s.p.Agency(), s.p.Client())
}

func (s clientScope) Invoices(db *gorm.DB) *gorm.DB {
	if s.p.AgencyID == nil || s.p.ClientID == nil {
		return none(db)
	}
	return db.Where("invoices.agency_id = ? AND invoices.client_id = ?", s.p.Agency(), s.p.Client())
}

func (clientScope) ChatPeers() []models.Role {
	return []models.Role{models.RoleOwner}
}
