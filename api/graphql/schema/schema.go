package schema

import (
	_ "embed"
)

//go:embed schema.graphql
var Schema string
