package attendance

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"

	"rollcall/pkg/bus"
)

// Store holds external dependencies required by the attendance core.
// Bus is optional; when nil, lifecycle events are not published.
type Store struct {
	DB  *pgxpool.Pool
	ORM *gorm.DB
	Bus *bus.Bus
}
