package rbac

import (
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/sengwoong/lecture-server/internal/domain"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// rolePolicies is the static permission table. Roles come from the JWT,
// so there is no per-tenant policy reload here.
var rolePolicies = [][]string{
	{"professor", "course", "read"},
	{"professor", "course", "create"},
	{"professor", "schedule", "read"},
	{"professor", "schedule", "manage"},
	{"professor", "checkin", "issue"},
	{"professor", "record", "read"},
	{"professor", "record", "write"},
	{"professor", "leave", "read"},
	{"professor", "leave", "decide"},

	{"student", "course", "read"},
	{"student", "course", "enroll"},
	{"student", "schedule", "read"},
	{"student", "checkin", "redeem"},
	{"student", "record", "read"},
	{"student", "leave", "file"},
	{"student", "leave", "read"},
}

var roleInheritance = [][]string{
	{"admin", "professor"},
	{"admin", "student"},
}

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

type service struct {
	enforcer *casbin.Enforcer
	mu       sync.Mutex
}

func NewService() (Service, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	for _, p := range rolePolicies {
		if _, err := enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, err
		}
	}
	for _, g := range roleInheritance {
		if _, err := enforcer.AddGroupingPolicy(g[0], g[1]); err != nil {
			return nil, err
		}
	}

	return &service{enforcer: enforcer}, nil
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.enforcer.Enforce(req.Role, req.Resource, req.Action)
}
