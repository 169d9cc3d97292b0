// Package seed loads a small demo dataset for local evaluation.
package seed

import (
	"github.com/bwmarrin/snowflake"
	clientdomain "github.com/facturio/facturio/internal/client/domain"
	"github.com/facturio/facturio/internal/clock"
	"github.com/facturio/facturio/internal/config"
	projectdomain "github.com/facturio/facturio/internal/project/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// demoOwnerID is the subject claim to mint into a local bearer token when
// trying the API against seeded data.
const demoOwnerID = snowflake.ID(1)

func Run(cfg config.Config, db *gorm.DB, genID *snowflake.Node, clk clock.Clock, log *zap.Logger) error {
	if !cfg.SeedDemo {
		return nil
	}

	var count int64
	if err := db.Model(&clientdomain.Client{}).Where("owner_id = ?", demoOwnerID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	log.Info("seeding demo data")
	now := clk.Now()

	company := "Dupont SARL"
	client := clientdomain.Client{
		ID:        genID.Generate(),
		OwnerID:   demoOwnerID,
		Name:      "Jeanne Dupont",
		Email:     "jeanne@dupont.example",
		Company:   &company,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Create(&client).Error; err != nil {
		return err
	}

	project := projectdomain.Project{
		ID:        genID.Generate(),
		OwnerID:   demoOwnerID,
		ClientID:  client.ID,
		Name:      "Site vitrine",
		Status:    projectdomain.ProjectStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return db.Create(&project).Error
}

var Module = fx.Module("seed",
	fx.Invoke(Run),
)
