package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	auditdomain "github.com/smallbiznis/huddle/internal/audit/domain"
	authdomain "github.com/smallbiznis/huddle/internal/auth/domain"
	"github.com/smallbiznis/huddle/internal/config"
	groupdomain "github.com/smallbiznis/huddle/internal/group/domain"
	invitationdomain "github.com/smallbiznis/huddle/internal/invitation/domain"
	memberdomain "github.com/smallbiznis/huddle/internal/member/domain"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}
		// Other dialects (sqlite dev environments) take the gorm schema.
		return AutoMigrate(conn)
	}),
)

// AutoMigrate creates the schema from the gorm models. Tests share it
// with the non-postgres startup path.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&authdomain.User{},
		&authdomain.Session{},
		&groupdomain.Group{},
		&memberdomain.Member{},
		&invitationdomain.Invitation{},
		&auditdomain.Entry{},
	)
}
