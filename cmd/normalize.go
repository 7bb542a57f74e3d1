package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mkjeong/leadnet/internal/config"
	"github.com/mkjeong/leadnet/internal/db"
	"github.com/mkjeong/leadnet/internal/logger"
	"github.com/mkjeong/leadnet/internal/repository"
	"github.com/mkjeong/leadnet/internal/util"
)

// normalizeCmd rewrites every stored phone number through the normalizer.
// Sequential single pass; re-running it produces no further changes.
var normalizeCmd = &cobra.Command{
	Use:   "normalize-phones",
	Short: "One-time bulk renormalization of stored phone numbers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger.Init(cfg.Log.Level)
		defer logger.Sync()

		sqlDB, err := db.NewMySQLConnection(cfg.MySQL)
		if err != nil {
			return fmt.Errorf("mysql connect: %w", err)
		}
		defer sqlDB.Close()

		ctx := context.Background()
		recordsRepo := repository.NewRecordsRepository(sqlDB)

		rows, err := recordsRepo.ListPhoneRows(ctx)
		if err != nil {
			return fmt.Errorf("list phone rows: %w", err)
		}

		changed := 0
		skipped := 0
		for _, row := range rows {
			normalized := util.NormalizePhone(row.PhoneNumber)
			if normalized == "" || normalized == row.PhoneNumber {
				skipped++
				continue
			}
			if err := recordsRepo.UpdatePhone(ctx, row.ID, normalized); err != nil {
				// most likely a unique collision with an already-normalized
				// duplicate row; report and keep going
				logger.Log.Warn("keeping unnormalized phone",
					zap.String("record_id", row.ID),
					zap.String("phone", row.PhoneNumber),
					zap.Error(err),
				)
				skipped++
				continue
			}
			changed++
		}

		logger.Log.Info("phone normalization pass done",
			zap.Int("updated", changed),
			zap.Int("unchanged", skipped),
		)
		return nil
	},
}
