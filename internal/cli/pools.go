package cli

import (
	"context"
	"fmt"

	"adaptive-quiz-service/internal/config"
	"adaptive-quiz-service/internal/domain"
	"adaptive-quiz-service/internal/infra/file"
	"adaptive-quiz-service/internal/infra/postgres"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewPoolsCmd groups question pool maintenance commands.
func NewPoolsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pools",
		Short: "Manage question pools",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "import [dir]",
		Short: "Validate easy/medium/hard.json and store them in Postgres",
		Long:  "Reads easy.json, medium.json and hard.json from dir (the built-in sample pools when omitted) and replaces the pools stored in Postgres.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return importPools(cmd.Context(), *configPath, dir)
		},
	})
	return cmd
}

func importPools(ctx context.Context, configPath, dir string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
		return err
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	source := file.NewDirPoolLoader(dir)
	target := postgres.NewPoolLoader(pool)
	for _, d := range domain.Difficulties {
		questions, err := source.LoadPool(ctx, d)
		if err != nil {
			return fmt.Errorf("read %s pool: %w", d, err)
		}
		if err := target.ImportPool(ctx, d, questions); err != nil {
			return err
		}
		logger.Info("question pool imported", zap.String("difficulty", string(d)), zap.Int("questions", len(questions)))
	}
	return nil
}
