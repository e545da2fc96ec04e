package store

import (
	"database/sql"
	"fmt"

	"github.com/bromleigh/mealboard/internal/model"
)

type RecipeStore struct {
	db *sql.DB
}

func NewRecipeStore(db *sql.DB) *RecipeStore {
	return &RecipeStore{db: db}
}

func scanRecipe(scanner interface{ Scan(...any) error }) (*model.Recipe, error) {
	var r model.Recipe
	err := scanner.Scan(&r.ID, &r.MenuItemID, &r.Instructions, &r.PrepTime, &r.CookTime, &r.Servings, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

const recipeCols = `id, menu_item_id, instructions, prep_time, cook_time, servings, created_at`

// IngredientInput is an ingredient line as submitted with a recipe.
type IngredientInput struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// Create inserts a recipe and its ingredient lines in one transaction.
// A menu item can have at most one recipe (UNIQUE on menu_item_id).
func (s *RecipeStore) Create(menuItemID int64, instructions string, prepTime, cookTime, servings int, ingredients []IngredientInput) (*model.Recipe, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO recipes (menu_item_id, instructions, prep_time, cook_time, servings) VALUES (?, ?, ?, ?, ?)`,
		menuItemID, instructions, prepTime, cookTime, servings,
	)
	if err != nil {
		return nil, fmt.Errorf("insert recipe: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	for _, ing := range ingredients {
		if _, err := tx.Exec(
			`INSERT INTO recipe_ingredients (recipe_id, name, quantity, unit) VALUES (?, ?, ?, ?)`,
			id, ing.Name, ing.Quantity, ing.Unit,
		); err != nil {
			return nil, fmt.Errorf("insert ingredient %q: %w", ing.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return s.GetByID(id)
}

func (s *RecipeStore) GetByID(id int64) (*model.Recipe, error) {
	row := s.db.QueryRow(`SELECT `+recipeCols+` FROM recipes WHERE id = ?`, id)
	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return r, nil
}

func (s *RecipeStore) GetByMenuItem(menuItemID int64) (*model.Recipe, error) {
	row := s.db.QueryRow(`SELECT `+recipeCols+` FROM recipes WHERE menu_item_id = ?`, menuItemID)
	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe by menu item: %w", err)
	}
	return r, nil
}

// Update rewrites a recipe's fields and replaces its whole ingredient list
// in one transaction.
func (s *RecipeStore) Update(id int64, instructions string, prepTime, cookTime, servings int, ingredients []IngredientInput) (*model.Recipe, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`UPDATE recipes SET instructions = ?, prep_time = ?, cook_time = ?, servings = ? WHERE id = ?`,
		instructions, prepTime, cookTime, servings, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM recipe_ingredients WHERE recipe_id = ?`, id); err != nil {
		return nil, fmt.Errorf("clear ingredients: %w", err)
	}
	for _, ing := range ingredients {
		if _, err := tx.Exec(
			`INSERT INTO recipe_ingredients (recipe_id, name, quantity, unit) VALUES (?, ?, ?, ?)`,
			id, ing.Name, ing.Quantity, ing.Unit,
		); err != nil {
			return nil, fmt.Errorf("insert ingredient %q: %w", ing.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return s.GetByID(id)
}

func (s *RecipeStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return nil
}

func (s *RecipeStore) ListIngredients(recipeID int64) ([]model.RecipeIngredient, error) {
	rows, err := s.db.Query(
		`SELECT id, recipe_id, name, quantity, unit FROM recipe_ingredients WHERE recipe_id = ? ORDER BY id ASC`,
		recipeID,
	)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	defer rows.Close()

	var ingredients []model.RecipeIngredient
	for rows.Next() {
		var ing model.RecipeIngredient
		if err := rows.Scan(&ing.ID, &ing.RecipeID, &ing.Name, &ing.Quantity, &ing.Unit); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		ingredients = append(ingredients, ing)
	}
	return ingredients, rows.Err()
}
