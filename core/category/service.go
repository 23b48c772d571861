package category

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/chimbuka/mabuku/domain"
	"github.com/chimbuka/mabuku/internal/cache"
	"github.com/chimbuka/mabuku/pkg/audit"
	"github.com/chimbuka/mabuku/pkg/log"
)

const (
	AuditKeyCreate = "category.create"
	AuditKeyUpdate = "category.update"
	AuditKeyDelete = "category.delete"

	cacheEntityCategory = "category"

	// maxHierarchyDepth bounds the parent-pointer walk so a corrupted
	// parent link cannot loop forever.
	maxHierarchyDepth = 32
)

type repository interface {
	Create(context.Context, *domain.Category) error
	Find(context.Context, *domain.ListCategoriesFilter) ([]*domain.Category, error)
	GetByID(ctx context.Context, orgID, id string) (*domain.Category, error)
	GetByName(ctx context.Context, orgID, parentID, name string) (*domain.Category, error)
	Update(context.Context, *domain.Category) error
	SoftDelete(ctx context.Context, orgID, id string) error
	CountChildren(ctx context.Context, orgID, id string) (int64, error)
	CountTransactions(ctx context.Context, orgID, id string) (int64, error)
	GetStats(ctx context.Context, orgID string) ([]*domain.CategoryStats, error)
	GetMonthlyTotals(ctx context.Context, orgID string, months int) ([]*domain.CategoryMonthlyTotal, error)
}

type ServiceDeps struct {
	Repository repository
	Cache      *cache.Cache

	Validator   *validator.Validate
	Logger      log.Logger
	AuditLogger audit.AuditLogger
}

type Service struct {
	repo  repository
	cache *cache.Cache

	validator   *validator.Validate
	logger      log.Logger
	auditLogger audit.AuditLogger

	TimeNow func() time.Time
}

func NewService(deps ServiceDeps) *Service {
	return &Service{
		deps.Repository,
		deps.Cache,
		deps.Validator,
		deps.Logger,
		deps.AuditLogger,
		time.Now,
	}
}

func (s *Service) Create(ctx context.Context, category *domain.Category) error {
	if err := s.validator.Struct(category); err != nil {
		return err
	}

	if category.ParentID != "" {
		if _, err := s.repo.GetByID(ctx, category.OrganizationID, category.ParentID); err != nil {
			if errors.Is(err, ErrCategoryNotFound) {
				return ErrParentNotFound
			}
			return err
		}
	}

	existing, err := s.repo.GetByName(ctx, category.OrganizationID, category.ParentID, category.Name)
	if err != nil && !errors.Is(err, ErrCategoryNotFound) {
		return err
	}
	if existing != nil {
		return ErrCategoryDuplicateName
	}

	if err := s.repo.Create(ctx, category); err != nil {
		return err
	}
	s.invalidate(category.OrganizationID)
	s.auditAsync(ctx, AuditKeyCreate, category)
	return nil
}

func (s *Service) Find(ctx context.Context, filter *domain.ListCategoriesFilter) ([]*domain.Category, error) {
	return s.repo.Find(ctx, filter)
}

func (s *Service) GetByID(ctx context.Context, orgID, id string) (*domain.Category, error) {
	if id == "" {
		return nil, ErrCategoryIDEmptyParam
	}
	return s.repo.GetByID(ctx, orgID, id)
}

func (s *Service) Update(ctx context.Context, category *domain.Category) error {
	if category.ID == "" {
		return ErrCategoryIDEmptyParam
	}

	if category.ParentID != "" {
		if category.ParentID == category.ID {
			return ErrCyclicHierarchy
		}
		ancestors, err := s.Ancestors(ctx, category.OrganizationID, category.ParentID)
		if err != nil {
			return err
		}
		for _, a := range ancestors {
			if a.ID == category.ID {
				return ErrCyclicHierarchy
			}
		}
	}

	existing, err := s.repo.GetByName(ctx, category.OrganizationID, category.ParentID, category.Name)
	if err != nil && !errors.Is(err, ErrCategoryNotFound) {
		return err
	}
	if existing != nil && existing.ID != category.ID {
		return ErrCategoryDuplicateName
	}

	if err := s.repo.Update(ctx, category); err != nil {
		return err
	}
	s.invalidate(category.OrganizationID)
	s.auditAsync(ctx, AuditKeyUpdate, category)
	return nil
}

// Delete soft-deletes a category. Categories still linked to
// transactions or holding children cannot be removed.
func (s *Service) Delete(ctx context.Context, orgID, id string) error {
	if id == "" {
		return ErrCategoryIDEmptyParam
	}

	children, err := s.repo.CountChildren(ctx, orgID, id)
	if err != nil {
		return err
	}
	transactions, err := s.repo.CountTransactions(ctx, orgID, id)
	if err != nil {
		return err
	}
	if children > 0 || transactions > 0 {
		return ErrCategoryInUse
	}

	if err := s.repo.SoftDelete(ctx, orgID, id); err != nil {
		return err
	}
	s.invalidate(orgID)
	s.auditAsync(ctx, AuditKeyDelete, map[string]interface{}{"id": id})
	return nil
}

// Hierarchy builds the category tree for an organization. Results are
// cached per organization until the next write.
func (s *Service) Hierarchy(ctx context.Context, orgID string) ([]*domain.CategoryNode, error) {
	if cached, ok := s.cache.Get(orgID, cacheEntityCategory, "hierarchy"); ok {
		if nodes, ok := cached.([]*domain.CategoryNode); ok {
			return nodes, nil
		}
	}

	categories, err := s.repo.Find(ctx, &domain.ListCategoriesFilter{
		OrganizationID: orgID,
		ActiveOnly:     true,
	})
	if err != nil {
		return nil, err
	}

	nodes := map[string]*domain.CategoryNode{}
	for _, c := range categories {
		nodes[c.ID] = &domain.CategoryNode{Category: *c}
	}

	var roots []*domain.CategoryNode
	for _, n := range nodes {
		if n.ParentID == "" {
			roots = append(roots, n)
			continue
		}
		parent, ok := nodes[n.ParentID]
		if !ok {
			// parent is inactive or deleted; surface the node at the root
			roots = append(roots, n)
			continue
		}
		parent.Children = append(parent.Children, n)
	}

	for _, root := range roots {
		annotate(root, "", 0)
	}

	s.cache.Set(orgID, cacheEntityCategory, "hierarchy", roots)
	return roots, nil
}

// Ancestors walks the parent pointers from the given category up to the
// root, nearest ancestor first.
func (s *Service) Ancestors(ctx context.Context, orgID, id string) ([]*domain.Category, error) {
	var ancestors []*domain.Category
	currentID := id
	for depth := 0; currentID != "" && depth < maxHierarchyDepth; depth++ {
		c, err := s.repo.GetByID(ctx, orgID, currentID)
		if err != nil {
			return nil, err
		}
		if depth > 0 {
			ancestors = append(ancestors, c)
		}
		currentID = c.ParentID
	}
	return ancestors, nil
}

// Path renders the slash-joined names from root to the category.
func (s *Service) Path(ctx context.Context, orgID, id string) (string, error) {
	c, err := s.repo.GetByID(ctx, orgID, id)
	if err != nil {
		return "", err
	}
	ancestors, err := s.Ancestors(ctx, orgID, id)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(ancestors)+1)
	for i := len(ancestors) - 1; i >= 0; i-- {
		parts = append(parts, ancestors[i].Name)
	}
	parts = append(parts, c.Name)
	return strings.Join(parts, "/"), nil
}

func (s *Service) GetStats(ctx context.Context, orgID string) ([]*domain.CategoryStats, error) {
	if cached, ok := s.cache.Get(orgID, cacheEntityCategory, "stats"); ok {
		if stats, ok := cached.([]*domain.CategoryStats); ok {
			return stats, nil
		}
	}
	stats, err := s.repo.GetStats(ctx, orgID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(orgID, cacheEntityCategory, "stats", stats)
	return stats, nil
}

func (s *Service) GetAnalytics(ctx context.Context, orgID string, months int) ([]*domain.CategoryMonthlyTotal, error) {
	if months <= 0 {
		months = 12
	}
	return s.repo.GetMonthlyTotals(ctx, orgID, months)
}

// InitializeDefaults seeds the starter category tree for a new
// organization. Existing names are skipped.
func (s *Service) InitializeDefaults(ctx context.Context, orgID string) ([]*domain.Category, error) {
	var created []*domain.Category
	for _, seed := range defaultTree() {
		parent := &domain.Category{
			OrganizationID: orgID,
			Name:           seed.name,
			Description:    seed.description,
			IsActive:       true,
		}
		if err := s.Create(ctx, parent); err != nil {
			if errors.Is(err, ErrCategoryDuplicateName) {
				continue
			}
			return nil, fmt.Errorf("seeding category %q: %w", seed.name, err)
		}
		created = append(created, parent)

		for _, childName := range seed.children {
			child := &domain.Category{
				OrganizationID: orgID,
				ParentID:       parent.ID,
				Name:           childName,
				IsActive:       true,
			}
			if err := s.Create(ctx, child); err != nil {
				if errors.Is(err, ErrCategoryDuplicateName) {
					continue
				}
				return nil, fmt.Errorf("seeding category %q: %w", childName, err)
			}
			created = append(created, child)
		}
	}
	return created, nil
}

func (s *Service) invalidate(orgID string) {
	s.cache.DeletePattern(orgID, cacheEntityCategory)
}

func (s *Service) auditAsync(ctx context.Context, key string, data interface{}) {
	go func() {
		ctx := context.WithoutCancel(ctx)
		if err := s.auditLogger.Log(ctx, key, data); err != nil {
			s.logger.Error(ctx, "failed to record audit log", "error", err)
		}
	}()
}

func annotate(node *domain.CategoryNode, parentPath string, depth int) {
	if parentPath == "" {
		node.Path = node.Name
	} else {
		node.Path = parentPath + "/" + node.Name
	}
	node.Depth = depth
	for _, child := range node.Children {
		annotate(child, node.Path, depth+1)
	}
}

type categorySeed struct {
	name        string
	description string
	children    []string
}

func defaultTree() []categorySeed {
	return []categorySeed{
		{name: "Income", description: "Money coming in", children: []string{"Sales", "Services", "Other Income"}},
		{name: "Cost of Sales", description: "Direct costs of goods sold", children: []string{"Stock Purchases", "Freight"}},
		{name: "Operating Expenses", description: "Day-to-day running costs", children: []string{"Rent", "Utilities", "Fuel", "Airtime & Data", "Salaries & Wages", "Bank Charges"}},
		{name: "Taxes", description: "Statutory payments", children: []string{"VAT", "PAYE", "Turnover Tax"}},
		{name: "Capital", description: "Equipment and investments", children: []string{"Equipment", "Vehicles"}},
	}
}
