package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructDatabaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		baseURL  string
		database string
		want     string
	}{
		{
			name:    "no database name",
			baseURL: "postgres://u:p@localhost:5432/giveaways",
			want:    "postgres://u:p@localhost:5432/giveaways",
		},
		{
			name:     "plain server",
			baseURL:  "postgres://u:p@localhost:5432/",
			database: "giveaways",
			want:     "postgres://u:p@localhost:5432/giveaways?sslmode=disable",
		},
		{
			name:     "existing query",
			baseURL:  "postgres://u:p@localhost:5432?connect_timeout=5",
			database: "giveaways",
			want:     "postgres://u:p@localhost:5432/giveaways?connect_timeout=5&sslmode=disable",
		},
		{
			name:     "explicit sslmode",
			baseURL:  "postgres://u:p@db:5432?sslmode=require",
			database: "giveaways",
			want:     "postgres://u:p@db:5432/giveaways?sslmode=require",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ConstructDatabaseURL(tt.baseURL, tt.database))
		})
	}
}
