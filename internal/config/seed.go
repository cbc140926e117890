package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Seed is the tenant data for local runs on the memory driver.
type Seed struct {
	Organizations []SeedOrganization `mapstructure:"organizations"`
}

type SeedOrganization struct {
	ID      string       `mapstructure:"id"`
	Name    string       `mapstructure:"name"`
	Teams   []SeedTeam   `mapstructure:"teams"`
	Members []SeedMember `mapstructure:"members"`
}

type SeedTeam struct {
	ID   string `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

type SeedMember struct {
	UserID string `mapstructure:"user_id"`
	Role   string `mapstructure:"role"`
}

// LoadSeed reads a seed file; the format follows the file extension.
func LoadSeed(path string) (*Seed, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed Seed
	if err := v.Unmarshal(&seed); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	for i, org := range seed.Organizations {
		if org.ID == "" {
			return nil, fmt.Errorf("seed organization %d: id is required", i)
		}
		for j, team := range org.Teams {
			if team.ID == "" {
				return nil, fmt.Errorf("seed organization %s team %d: id is required", org.ID, j)
			}
		}
		for j, m := range org.Members {
			if m.UserID == "" {
				return nil, fmt.Errorf("seed organization %s member %d: user_id is required", org.ID, j)
			}
		}
	}
	return &seed, nil
}
