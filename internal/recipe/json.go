package recipe

import (
	"fmt"
	"os"
	"time"

	"github.com/tidwall/gjson"

	"github.com/hammamikhairi/ottokitchen/internal/domain"
	"github.com/hammamikhairi/ottokitchen/internal/logger"
)

// LoadFile reads a recipe table from a JSON file. See LoadJSON.
func LoadFile(path string, log *logger.Logger) (*MemorySource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading recipes %s: %w", path, err)
	}
	return LoadJSON(data, log)
}

// LoadJSON parses a recipe table of the form
//
//	{"recipes": [{"id": "soup", "name": "Soup", "ingredients": ["potato", "onion"],
//	  "cookingTime": 5, "result": {"id": "soup", "name": "Soup", "score": 100}}]}
//
// cookingTime is in seconds and defaults to five. A recipe without a
// result is kept; the pot reports it when cooking completes.
func LoadJSON(data []byte, log *logger.Logger) (*MemorySource, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed recipe json", domain.ErrInvalidRecipe)
	}

	src := NewEmptySource(log)
	var loadErr error
	gjson.GetBytes(data, "recipes").ForEach(func(_, v gjson.Result) bool {
		r, err := parseRecipe(v)
		if err == nil {
			err = src.Add(r)
		}
		if err != nil {
			loadErr = err
			return false
		}
		return true
	})
	if loadErr != nil {
		return nil, loadErr
	}
	if src.Len() == 0 {
		return nil, fmt.Errorf("%w: no recipes found", domain.ErrInvalidRecipe)
	}
	log.Info("loaded %d recipes", src.Len())
	return src, nil
}

func parseRecipe(v gjson.Result) (*domain.Recipe, error) {
	r := &domain.Recipe{
		ID:          v.Get("id").String(),
		Name:        v.Get("name").String(),
		CookingTime: domain.DefaultCookingTime,
	}
	if r.Name == "" {
		r.Name = r.ID
	}

	var ingErr error
	v.Get("ingredients").ForEach(func(_, ing gjson.Result) bool {
		name, err := domain.NormalizeIngredient(ing.String())
		if err != nil {
			ingErr = fmt.Errorf("recipe %s: %w", r.ID, err)
			return false
		}
		r.Ingredients = append(r.Ingredients, name)
		return true
	})
	if ingErr != nil {
		return nil, ingErr
	}

	if ct := v.Get("cookingTime"); ct.Exists() {
		r.CookingTime = time.Duration(ct.Float() * float64(time.Second))
	}

	if res := v.Get("result"); res.Exists() && res.IsObject() {
		spec := &domain.DishSpec{
			ID:    res.Get("id").String(),
			Name:  res.Get("name").String(),
			Score: int(res.Get("score").Int()),
		}
		if spec.Score <= 0 {
			spec.Score = domain.DefaultDishScore
		}
		r.Result = spec
	}
	return r, nil
}
