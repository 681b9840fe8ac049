package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Store loads card definitions from PostgreSQL. The schema is one flat cards
// table; skill columns are NULL for cards without a skill.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewStore connects to the card database and verifies the connection.
func NewStore(ctx context.Context, databaseURL string, logger *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect card database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping card database: %w", err)
	}
	logger.Info("card database connected",
		zap.Int32("total_conns", pool.Stat().TotalConns()),
	)
	return &Store{pool: pool, logger: logger}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Definitions loads the finalized card list in catalog order.
func (s *Store) Definitions(ctx context.Context) ([]CardDefinition, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT name, card_type, rarity, tribe, power, cost, text,
		       skill_trigger, skill_action, skill_amount, skill_target,
		       skill_card_name, skill_max_cost, skill_tribe
		FROM cards
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	var defs []CardDefinition
	for rows.Next() {
		var (
			name, cardType, rarity            string
			tribe, text                       *string
			power, cost                       int
			trigger, action, target, cardName *string
			amount, maxCost                   *int
			skillTribe                        *string
		)
		if err := rows.Scan(&name, &cardType, &rarity, &tribe, &power, &cost, &text,
			&trigger, &action, &amount, &target, &cardName, &maxCost, &skillTribe); err != nil {
			return nil, fmt.Errorf("scan card row: %w", err)
		}

		def := CardDefinition{
			Name:   name,
			Type:   CardType(cardType),
			Rarity: Rarity(rarity),
			Power:  power,
			Cost:   cost,
		}
		if tribe != nil {
			def.Tribe = *tribe
		}
		if text != nil {
			def.Text = *text
		}
		if trigger != nil && action != nil {
			spec := &SkillSpec{Trigger: Trigger(*trigger), Action: SkillAction(*action)}
			if amount != nil {
				spec.Amount = *amount
			}
			if target != nil {
				spec.Target = *target
			}
			if cardName != nil {
				spec.CardName = *cardName
			}
			if maxCost != nil {
				spec.MaxCost = *maxCost
			}
			if skillTribe != nil {
				spec.Tribe = *skillTribe
			}
			def.Skill = spec
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate card rows: %w", err)
	}

	defs = Finalize(defs)
	if err := Validate(defs); err != nil {
		return nil, err
	}
	s.logger.Info("card definitions loaded", zap.Int("count", len(defs)))
	return defs, nil
}
