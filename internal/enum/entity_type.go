package enum

type EntityType string

const (
	INGREDIENT EntityType = "INGREDIENT"
	RECIPE     EntityType = "RECIPE"
)

func (entityType EntityType) String() string {
	return string(entityType)
}

