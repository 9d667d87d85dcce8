package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/technest/backend/internal/domain"
	"gopkg.in/yaml.v3"
)

// catalogFile is the YAML layout accepted by the seed command
type catalogFile struct {
	Devices []catalogDevice `yaml:"devices"`
}

type catalogDevice struct {
	Slug      string        `yaml:"slug"`
	ModelName string        `yaml:"model_name"`
	Brand     string        `yaml:"brand"`
	ImageURL  string        `yaml:"image_url"`
	Scores    catalogScores `yaml:"scores"`
	Specs     []catalogSpec `yaml:"specs"`
}

type catalogScores struct {
	Camera      float64 `yaml:"camera"`
	Battery     float64 `yaml:"battery"`
	Performance float64 `yaml:"performance"`
	Value       float64 `yaml:"value"`
}

type catalogSpec struct {
	Key            string `yaml:"key"`
	Value          string `yaml:"value"`
	Label          string `yaml:"label"`
	Category       string `yaml:"category"`
	Unit           string `yaml:"unit"`
	HigherIsBetter *bool  `yaml:"higher_is_better"`
}

func newSeedCommand(app *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <catalog.yaml>",
		Short: "Load a device catalog into the database",
		Long: `Reads a YAML device catalog and upserts every device with its specs.
Existing devices with the same slug are replaced.`,
		Example: `  technest seed testdata/catalog.yaml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer f.Close()

			catalog, err := parseCatalog(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			store, err := app.openStore(ctx)
			if err != nil {
				return err
			}

			n, err := seedCatalog(ctx, store, catalog)
			if err != nil {
				return err
			}
			app.logger.Info().Int("devices", n).Str("file", args[0]).Msg("catalog seeded")
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d devices\n", n)
			return nil
		},
	}
	return cmd
}

// parseCatalog decodes and validates a YAML catalog
func parseCatalog(r io.Reader) (*catalogFile, error) {
	var catalog catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&catalog); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("catalog is empty")
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	seen := make(map[string]bool, len(catalog.Devices))
	for i, d := range catalog.Devices {
		slug := strings.TrimSpace(d.Slug)
		if slug == "" {
			return nil, fmt.Errorf("device %d has no slug", i+1)
		}
		if strings.TrimSpace(d.ModelName) == "" {
			return nil, fmt.Errorf("device %q has no model_name", slug)
		}
		if seen[slug] {
			return nil, fmt.Errorf("duplicate device slug %q", slug)
		}
		seen[slug] = true

		keys := make(map[string]bool, len(d.Specs))
		for _, s := range d.Specs {
			if strings.TrimSpace(s.Key) == "" {
				return nil, fmt.Errorf("device %q has a spec without a key", slug)
			}
			if keys[s.Key] {
				return nil, fmt.Errorf("device %q repeats spec %q", slug, s.Key)
			}
			keys[s.Key] = true
		}
	}
	return &catalog, nil
}

// toDomain converts a catalog entry into the stored device and its specs
func (d catalogDevice) toDomain() (*domain.Device, []domain.Spec) {
	device := &domain.Device{
		Slug:      strings.TrimSpace(d.Slug),
		ModelName: strings.TrimSpace(d.ModelName),
		Brand:     d.Brand,
		ImageURL:  d.ImageURL,
		Scores: domain.DeviceScores{
			Camera:      d.Scores.Camera,
			Battery:     d.Scores.Battery,
			Performance: d.Scores.Performance,
			Value:       d.Scores.Value,
		},
	}

	specs := make([]domain.Spec, 0, len(d.Specs))
	for _, s := range d.Specs {
		specs = append(specs, domain.Spec{
			SpecKey:        strings.TrimSpace(s.Key),
			RawValue:       s.Value,
			DisplayLabel:   s.Label,
			Category:       s.Category,
			Unit:           s.Unit,
			HigherIsBetter: s.HigherIsBetter,
		})
	}
	return device, specs
}

// seedCatalog upserts every catalog device and returns how many were written
func seedCatalog(ctx context.Context, writer domain.DeviceWriter, catalog *catalogFile) (int, error) {
	for i, entry := range catalog.Devices {
		device, specs := entry.toDomain()
		if err := writer.UpsertDevice(ctx, device, specs); err != nil {
			return i, fmt.Errorf("upsert %s: %w", device.Slug, err)
		}
	}
	return len(catalog.Devices), nil
}
