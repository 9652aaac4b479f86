package catalog

import (
	"github.com/kendall-kelly/storefront-api/apperrors"
	"github.com/kendall-kelly/storefront-api/models"
)

// ValidateProductPlacement checks that a product's category references form
// a single top -> sub -> leaf path in the tree.
func (t *Tree) ValidateProductPlacement(categoryID uint, subID, leafID *uint) error {
	top, ok := t.Get(categoryID)
	if !ok {
		return apperrors.Validation("Category does not exist")
	}
	if top.Level != models.LevelTop {
		return apperrors.Validation("Product category must be a top-level category")
	}

	if subID == nil {
		if leafID != nil {
			return apperrors.Validation("A sub-sub-category requires a sub-category")
		}
		return nil
	}
	sub, ok := t.Get(*subID)
	if !ok || sub.Level != models.LevelSub || sub.ParentID == nil || *sub.ParentID != top.ID {
		return apperrors.Validation("Sub-category must be a level 2 child of the category")
	}

	if leafID == nil {
		return nil
	}
	leaf, ok := t.Get(*leafID)
	if !ok || leaf.Level != models.LevelLeaf || leaf.ParentID == nil || *leaf.ParentID != sub.ID {
		return apperrors.Validation("Sub-sub-category must be a level 3 child of the sub-category")
	}
	return nil
}
