package migration

import (
	"fmt"

	"foodgram-backend/entities"
	"foodgram-backend/internal/utils/logging"

	"gorm.io/gorm"
)

// Models lists every table in dependency order.
func Models() []any {
	return []any{
		&entities.User{},
		&entities.Ingredient{},
		&entities.Recipe{},
		&entities.IngredientAmount{},
		&entities.Favorite{},
		&entities.ShoppingCart{},
		&entities.Subscription{},
	}
}

func Migrate(db *gorm.DB) error {
	for _, model := range Models() {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("migrating %T: %w", model, err)
		}
	}

	logging.Info().Int("tables", len(Models())).Msg("database migration complete")
	return nil
}
