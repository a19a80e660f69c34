package config

import (
	"fmt"

	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/qos"
)

// ValidateConfig validates the entire configuration and returns all validation errors
func (c *Config) ValidateConfig() error {
	var validationErrors ValidationErrors

	// Validate general config
	if c.General == nil {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "general",
			Message:   "configuration must contain 'general' section",
		})
		return validationErrors
	}

	if err := validate.Struct(c.General); err != nil {
		validationErrors = append(validationErrors, convertValidatorErrors(err, "general", "")...)
	}

	if len(c.Profiles) == 0 {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "profile",
			Message:   "configuration must contain at least one profile",
		})
	} else {
		validationErrors = append(validationErrors, c.validateProfiles()...)
	}

	if len(c.Slices) == 0 {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "slice",
			Message:   "configuration must contain at least one slice",
		})
	} else {
		validationErrors = append(validationErrors, c.validateSlices()...)
	}

	validationErrors = append(validationErrors, c.validateUseCases()...)
	validationErrors = append(validationErrors, c.validatePresets()...)

	if len(validationErrors) > 0 {
		return validationErrors
	}

	return nil
}

func (c *Config) validateProfiles() ValidationErrors {
	var validationErrors ValidationErrors
	seenIDs := make(map[string]bool)

	for i, profile := range c.Profiles {
		itemName := profile.ProfileID
		if itemName == "" {
			itemName = fmt.Sprintf("profile[%d]", i)
		}

		if err := validate.Struct(profile); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, fmt.Sprintf("profile.%d", i), itemName)...)
		}

		if seenIDs[profile.ProfileID] {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: "profile_id",
				Message:   fmt.Sprintf("duplicate profile id: %s", profile.ProfileID),
			})
		}
		seenIDs[profile.ProfileID] = true
	}

	return validationErrors
}

func (c *Config) validateSlices() ValidationErrors {
	var validationErrors ValidationErrors
	seenIDs := make(map[string]bool)
	seenSubnets := make(map[string]bool)

	for i, slice := range c.Slices {
		itemName := slice.SliceID
		if itemName == "" {
			itemName = fmt.Sprintf("slice[%d]", i)
		}

		if err := validate.Struct(slice); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, fmt.Sprintf("slice.%d", i), itemName)...)
		}

		if seenIDs[slice.SliceID] {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: "slice_id",
				Message:   fmt.Sprintf("duplicate slice id: %s", slice.SliceID),
			})
		}
		seenIDs[slice.SliceID] = true

		if slice.Subnet != "" && seenSubnets[slice.Subnet] {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: "subnet",
				Message:   fmt.Sprintf("duplicate slice subnet: %s", slice.Subnet),
			})
		}
		seenSubnets[slice.Subnet] = true

		for j, rule := range slice.MarkingRules {
			if rule.Table == "" {
				validationErrors = append(validationErrors, ValidationError{
					ItemName:  itemName,
					FieldPath: fmt.Sprintf("marking_rule.%d.table", j),
					Message:   "table cannot be empty",
				})
			}
			if rule.Chain == "" {
				validationErrors = append(validationErrors, ValidationError{
					ItemName:  itemName,
					FieldPath: fmt.Sprintf("marking_rule.%d.chain", j),
					Message:   "chain cannot be empty",
				})
			}
			if len(rule.RuleSpec) == 0 {
				validationErrors = append(validationErrors, ValidationError{
					ItemName:  itemName,
					FieldPath: fmt.Sprintf("marking_rule.%d.rule", j),
					Message:   "rule cannot be empty",
				})
			}
		}
	}

	return validationErrors
}

func (c *Config) validateUseCases() ValidationErrors {
	var validationErrors ValidationErrors
	seenIDs := make(map[string]bool)

	sliceIDs := make(map[string]bool, len(c.Slices))
	for _, s := range c.Slices {
		sliceIDs[s.SliceID] = true
	}
	profileIDs := make(map[string]bool, len(c.Profiles))
	for _, p := range c.Profiles {
		profileIDs[p.ProfileID] = true
	}

	for i, uc := range c.UseCases {
		itemName := uc.UseCaseID
		if itemName == "" {
			itemName = fmt.Sprintf("use_case[%d]", i)
		}

		if err := validate.Struct(uc); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, fmt.Sprintf("use_case.%d", i), itemName)...)
		}

		if seenIDs[uc.UseCaseID] {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: "use_case_id",
				Message:   fmt.Sprintf("duplicate use case id: %s", uc.UseCaseID),
			})
		}
		seenIDs[uc.UseCaseID] = true

		if uc.Slice != "" && !sliceIDs[uc.Slice] {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: "slice",
				Message:   fmt.Sprintf("unknown slice: %s", uc.Slice),
			})
		}
		if uc.Profile != "" && !profileIDs[uc.Profile] {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: "profile",
				Message:   fmt.Sprintf("unknown profile: %s", uc.Profile),
			})
		}
	}

	return validationErrors
}

func (c *Config) validatePresets() ValidationErrors {
	var validationErrors ValidationErrors
	seenIDs := make(map[string]bool)

	if len(c.Presets) > 0 && c.Bottleneck == nil {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "bottleneck",
			Message:   "presets are configured but no bottleneck is defined",
		})
	}

	if c.Bottleneck != nil {
		if err := validate.Struct(c.Bottleneck); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, "bottleneck", "")...)
		}
	}

	for i, preset := range c.Presets {
		itemName := preset.PresetID
		if itemName == "" {
			itemName = fmt.Sprintf("preset[%d]", i)
		}

		if err := validate.Struct(preset); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, fmt.Sprintf("preset.%d", i), itemName)...)
		}

		if seenIDs[preset.PresetID] {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: "preset_id",
				Message:   fmt.Sprintf("duplicate preset id: %s", preset.PresetID),
			})
		}
		seenIDs[preset.PresetID] = true

		validationErrors = append(validationErrors, validatePresetRates(itemName, preset)...)
	}

	return validationErrors
}

// validatePresetRates checks HTB consistency: each class ceiling must be at
// least its guaranteed rate, and the guaranteed rates must fit under the
// preset's total bandwidth.
func validatePresetRates(itemName string, preset *PresetConfig) ValidationErrors {
	var validationErrors ValidationErrors

	total, err := qos.ParseRate(string(preset.TotalRate))
	if err != nil {
		// The rate_expr validator already reported this.
		return validationErrors
	}

	var guaranteed uint64
	for _, class := range []struct {
		name string
		cfg  *PresetClassConfig
	}{
		{"class_a", preset.ClassA},
		{"class_b", preset.ClassB},
		{"default_class", preset.DefaultClass},
	} {
		if class.cfg == nil {
			continue
		}
		rate, rateErr := qos.ParseRate(string(class.cfg.Rate))
		ceil, ceilErr := qos.ParseRate(string(class.cfg.Ceil))
		if rateErr != nil || ceilErr != nil {
			continue
		}
		if ceil < rate {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: class.name + ".ceil",
				Message:   fmt.Sprintf("ceiling %s is below guaranteed rate %s", class.cfg.Ceil, class.cfg.Rate),
			})
		}
		if ceil > total {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: class.name + ".ceil",
				Message:   fmt.Sprintf("ceiling %s exceeds total rate %s", class.cfg.Ceil, preset.TotalRate),
			})
		}
		guaranteed += rate
	}

	if guaranteed > total {
		validationErrors = append(validationErrors, ValidationError{
			ItemName:  itemName,
			FieldPath: "total_rate",
			Message:   fmt.Sprintf("guaranteed class rates exceed total rate %s", preset.TotalRate),
		})
	}

	return validationErrors
}
