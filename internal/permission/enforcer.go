package permission

import (
	"fmt"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sorteos-app/sorteos-api/internal/domain"
)

// rbacModel is a plain RBAC model with the role as the subject. Roles are
// few and fixed, so policies use them directly instead of per-user grants.
const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

// defaultPolicies is the full capability table. Customers never appear
// here; customer-reachable operations check ownership instead.
var defaultPolicies = [][]string{
	{"super_admin", "raffles", "create"},
	{"super_admin", "raffles", "activate"},
	{"super_admin", "raffles", "update"},
	{"super_admin", "packages", "create"},
	{"super_admin", "packages", "delete"},
	{"super_admin", "prizes", "create"},
	{"super_admin", "prizes", "evaluate"},
	{"super_admin", "prizes", "designate_winner"},
	{"super_admin", "orders", "list"},
	{"super_admin", "orders", "approve"},
	{"super_admin", "orders", "reject"},
	{"super_admin", "orders", "complete"},
	{"super_admin", "orders", "cancel"},
	{"super_admin", "users", "update_status"},
	{"super_admin", "dashboard", "read"},

	{"admin", "raffles", "create"},
	{"admin", "raffles", "activate"},
	{"admin", "raffles", "update"},
	{"admin", "packages", "create"},
	{"admin", "packages", "delete"},
	{"admin", "prizes", "create"},
	{"admin", "prizes", "evaluate"},
	{"admin", "prizes", "designate_winner"},
	{"admin", "orders", "list"},
	{"admin", "orders", "approve"},
	{"admin", "orders", "reject"},
	{"admin", "orders", "complete"},
	{"admin", "orders", "cancel"},
	{"admin", "dashboard", "read"},

	{"contadora", "orders", "list"},
	{"contadora", "orders", "approve"},
	{"contadora", "orders", "reject"},
	{"contadora", "dashboard", "read"},
}

// Enforcer is the single capability-check abstraction consumed by the
// services. Every admin-gated operation funnels through Authorize.
type Enforcer struct {
	mu       sync.RWMutex
	enforcer *casbin.Enforcer
	logger   *zap.Logger
}

func NewEnforcer(db *gorm.DB, logger *zap.Logger) (*Enforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("gormadapter.NewAdapterByDB -> %w", err)
	}

	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("model.NewModelFromString -> %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("casbin.NewEnforcer -> %w", err)
	}

	if err = enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("enforcer.LoadPolicy -> %w", err)
	}

	e := &Enforcer{
		enforcer: enforcer,
		logger:   logger,
	}

	if err = e.seedDefaultPolicies(); err != nil {
		return nil, err
	}

	return e, nil
}

func (e *Enforcer) seedDefaultPolicies() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, policy := range defaultPolicies {
		// AddPolicy is a no-op when the rule already exists.
		if _, err := e.enforcer.AddPolicy(policy); err != nil {
			return fmt.Errorf("enforcer.AddPolicy(%v) -> %w", policy, err)
		}
	}

	if err := e.enforcer.SavePolicy(); err != nil {
		return fmt.Errorf("enforcer.SavePolicy -> %w", err)
	}

	return nil
}

// Authorize reports whether the user's role may perform action on resource.
func (e *Enforcer) Authorize(user domain.User, action, resource string) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	allowed, err := e.enforcer.Enforce(string(user.Role), resource, action)
	if err != nil {
		e.logger.Error("permission check failed",
			zap.Error(err),
			zap.Uint("user_id", user.ID),
			zap.String("role", string(user.Role)),
			zap.String("resource", resource),
			zap.String("action", action),
		)

		return false, fmt.Errorf("e.enforcer.Enforce -> %w", err)
	}

	return allowed, nil
}
