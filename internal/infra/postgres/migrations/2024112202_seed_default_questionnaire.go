package migrations

import (
	"context"
	"encoding/json"

	"github.com/uptrace/bun"

	"social-style-service/internal/domain"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			q := domain.DefaultQuestionnaire()
			data, err := json.Marshal(q)
			if err != nil {
				return err
			}
			_, err = db.ExecContext(ctx,
				`INSERT INTO questionnaires (id, data) VALUES (?, ?) ON CONFLICT (id) DO NOTHING`,
				q.ID, string(data))
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DELETE FROM questionnaires WHERE id = ?`, domain.DefaultQuestionnaireID)
			return err
		},
	)
}
