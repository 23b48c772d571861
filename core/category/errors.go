package category

import "errors"

var (
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryIDEmptyParam  = errors.New("category id is required")
	ErrCategoryDuplicateName = errors.New("a category with the same name already exists under this parent")
	ErrParentNotFound        = errors.New("parent category not found")
	ErrCyclicHierarchy       = errors.New("category cannot be its own ancestor")
	ErrCategoryInUse         = errors.New("category has transactions or child categories linked to it")
)
