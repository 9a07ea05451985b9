package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/customeros/recipestack/config"
	"github.com/customeros/recipestack/interfaces"
	"github.com/customeros/recipestack/internal/models"
)

type Repositories struct {
	IngredientRepository interfaces.IngredientRepository
	RecipeRepository     interfaces.RecipeRepository
	UserRepository       interfaces.UserRepository
}

func InitRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		IngredientRepository: NewIngredientRepository(db),
		RecipeRepository:     NewRecipeRepository(db),
		UserRepository:       NewUserRepository(db),
	}
}

// AutoMigrate creates or updates every table the service owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Ingredient{},
		&models.Recipe{},
	)
}

func MigrateRecipestackDB(dbConfig *config.RecipestackDatabaseConfig, recipestackDB *gorm.DB) error {
	db, err := recipestackDB.DB()
	if err != nil {
		return err
	}

	db.SetMaxOpenConns(5)

	err = AutoMigrate(recipestackDB)

	if dbConfig.MaxIdleConn > 0 {
		db.SetMaxIdleConns(dbConfig.MaxIdleConn)
	}
	if dbConfig.MaxConn > 0 {
		db.SetMaxOpenConns(dbConfig.MaxConn)
	}
	if dbConfig.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(time.Duration(dbConfig.ConnMaxLifetime) * time.Minute)
	}

	return err
}
