package jobs

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/mdco-storefront/api/internal/platform/requestctx"
)

// Promotions rebuilds the gift-with-purchase lookup: a CSV of
// "partNumber,giftPartNumber" pairs becomes a JSON object mapping each gift
// to the part numbers that award it.
type Promotions struct {
	inFile  string
	outFile string
}

// NewPromotions builds the promotions job for the given input and output
// paths.
func NewPromotions(inFile, outFile string) *Promotions {
	return &Promotions{inFile: inFile, outFile: outFile}
}

// Run parses the pair file and writes the grouped JSON map. Malformed lines
// are skipped and counted.
func (p *Promotions) Run(ctx context.Context) error {
	f, err := os.Open(p.inFile)
	if err != nil {
		return fmt.Errorf("jobs: open promotions file: %w", err)
	}
	defer f.Close()

	logger := requestctx.Logger(ctx)
	gifts := make(map[string][]string)
	skipped := 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ",", 2)
		if len(parts) != 2 {
			skipped++
			continue
		}
		pn := strings.TrimSpace(parts[0])
		gift := strings.TrimSpace(parts[1])
		if pn == "" || gift == "" {
			skipped++
			continue
		}
		gifts[gift] = append(gifts[gift], pn)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("jobs: read promotions file: %w", err)
	}

	payload, err := json.MarshalIndent(gifts, "", "  ")
	if err != nil {
		return fmt.Errorf("jobs: encode promotions map: %w", err)
	}
	if err := os.WriteFile(p.outFile, payload, 0o644); err != nil {
		return fmt.Errorf("jobs: write promotions map: %w", err)
	}

	logger.Info("promotions map rebuilt",
		zap.String("in", p.inFile),
		zap.String("out", p.outFile),
		zap.Int("entries", len(gifts)),
		zap.Int("skipped", skipped))
	return nil
}
