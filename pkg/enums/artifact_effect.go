package enums

import "fmt"

// ArtifactEffect describes what consuming a shop artifact does.
type ArtifactEffect string

const (
	ArtifactEffectNone    ArtifactEffect = "none"
	ArtifactEffectXPBoost ArtifactEffect = "xp_boost"
	ArtifactEffectLootBox ArtifactEffect = "loot_box"
)

var validArtifactEffects = []ArtifactEffect{
	ArtifactEffectNone,
	ArtifactEffectXPBoost,
	ArtifactEffectLootBox,
}

// IsValid reports whether the value is a known ArtifactEffect.
func (a ArtifactEffect) IsValid() bool {
	for _, candidate := range validArtifactEffects {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseArtifactEffect converts raw input into an ArtifactEffect.
func ParseArtifactEffect(value string) (ArtifactEffect, error) {
	for _, candidate := range validArtifactEffects {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid artifact effect %q", value)
}
