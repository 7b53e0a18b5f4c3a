// Package features breaks a multi-feature build request into detected
// features sorted by build priority, and tracks which of them need a
// configuration wizard before code generation.
package features

import (
	"regexp"

	"github.com/wakti/wakti-nlp/internal/types"
)

// BusinessPattern recognizes one kind of business in a prompt.
type BusinessPattern struct {
	Name    string
	Pattern *regexp.Regexp
}

// FeaturePattern describes how a feature is detected and where it sits in
// the build order. Lower priorities are built first.
type FeaturePattern struct {
	Type           types.FeatureType
	Patterns       []*regexp.Regexp
	Priority       int
	RequiresWizard bool
	WizardType     string
}

// Catalog is the read-only set of business and feature patterns an
// Analyzer scans with. Business order decides which business type wins.
type Catalog struct {
	businesses []BusinessPattern
	features   []FeaturePattern
}

// NewCatalog copies businesses and features into a catalog. A wizard
// feature without an explicit wizard type gets the one from WizardTypeFor.
func NewCatalog(businesses []BusinessPattern, features []FeaturePattern) Catalog {
	fs := make([]FeaturePattern, 0, len(features))
	for _, f := range features {
		f.Patterns = append([]*regexp.Regexp(nil), f.Patterns...)
		if !f.RequiresWizard {
			f.WizardType = ""
		} else if f.WizardType == "" {
			f.WizardType = WizardTypeFor(f.Type)
		}
		fs = append(fs, f)
	}

	return Catalog{
		businesses: append([]BusinessPattern(nil), businesses...),
		features:   fs,
	}
}

// Businesses returns a copy of the business patterns in scan order.
func (c Catalog) Businesses() []BusinessPattern {
	return append([]BusinessPattern(nil), c.businesses...)
}

// Features returns a copy of the feature patterns.
func (c Catalog) Features() []FeaturePattern {
	return append([]FeaturePattern(nil), c.features...)
}

var wizardTypes = map[types.FeatureType]string{
	types.FeatureBooking:  "booking_setup",
	types.FeatureProducts: "product_catalog",
	types.FeatureCheckout: "payment_setup",
	types.FeatureAuth:     "auth_setup",
}

// WizardTypeFor returns the wizard that configures feature, or "" when the
// feature is built without one.
func WizardTypeFor(feature types.FeatureType) string {
	return wizardTypes[feature]
}

func ci(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + expr)
}

var defaultCatalog = NewCatalog(
	[]BusinessPattern{
		{Name: "barber shop", Pattern: ci(`\b(barber\s*shops?|barbers?|haircuts?)\b`)},
		{Name: "restaurant", Pattern: ci(`\b(restaurants?|cafes?|bistro|diner|pizzeria|bakery|coffee\s+shop)\b`)},
		{Name: "fitness center", Pattern: ci(`\b(fitness(\s+(center|centre|studio))?|gyms?|crossfit|yoga\s+studio|personal\s+trainer)\b`)},
		{Name: "clinic", Pattern: ci(`\b(clinics?|dental|dentist|medical|doctors?|physiotherapy|veterinary)\b`)},
		{Name: "spa", Pattern: ci(`\b(spa|massage|wellness|beauty\s+salon|nail\s+salon|salon)\b`)},
		{Name: "retail", Pattern: ci(`\b(retail|shop|store|boutique|e-?commerce)\b`)},
		{Name: "agency", Pattern: ci(`\b(agency|consultancy|consulting|freelancer?|marketing\s+firm)\b`)},
	},
	[]FeaturePattern{
		{
			Type:     types.FeatureLanding,
			Priority: 1,
			Patterns: []*regexp.Regexp{
				ci(`\b(landing\s+page|home\s*page|hero\s+section)\b`),
				ci(`\b(website|web\s+site)\b`),
			},
		},
		{
			Type:           types.FeatureBooking,
			Priority:       2,
			RequiresWizard: true,
			Patterns: []*regexp.Regexp{
				ci(`\b(book(ing|ings)?|appointments?|reservations?|reserve)\b`),
				ci(`\b(schedul(e|ing)|calendar|time\s+slots?)\b`),
			},
		},
		{
			Type:           types.FeatureProducts,
			Priority:       3,
			RequiresWizard: true,
			Patterns: []*regexp.Regexp{
				ci(`\b(products?|catalog(ue)?|inventory|merchandise)\b`),
				ci(`\b(sell|selling)\b`),
			},
		},
		{
			Type:     types.FeatureCart,
			Priority: 4,
			Patterns: []*regexp.Regexp{
				ci(`\b(shopping\s+)?(cart|basket)\b`),
			},
		},
		{
			Type:           types.FeatureCheckout,
			Priority:       5,
			RequiresWizard: true,
			Patterns: []*regexp.Regexp{
				ci(`\b(checkout|check\s+out)\b`),
				ci(`\b(payments?|pay\s+online|stripe|paypal)\b`),
			},
		},
		{
			Type:           types.FeatureAuth,
			Priority:       6,
			RequiresWizard: true,
			Patterns: []*regexp.Regexp{
				ci(`\b(login|log\s+in|sign\s*in|sign\s*up|register|registration)\b`),
				ci(`\b(auth|authentication)\b`),
			},
		},
		{
			Type:     types.FeatureAccount,
			Priority: 7,
			Patterns: []*regexp.Regexp{
				ci(`\b(my\s+account|user\s+profiles?|profile\s+page|order\s+history)\b`),
			},
		},
		{
			Type:     types.FeatureMedia,
			Priority: 8,
			Patterns: []*regexp.Regexp{
				ci(`\b(gallery|photos?|images?|videos?|portfolio)\b`),
			},
		},
		{
			Type:     types.FeatureContact,
			Priority: 9,
			Patterns: []*regexp.Regexp{
				ci(`\bcontact(\s+(form|us|page))?\b`),
				ci(`\b(map|location|directions|opening\s+hours)\b`),
			},
		},
		{
			Type:     types.FeatureBilingual,
			Priority: 10,
			Patterns: []*regexp.Regexp{
				ci(`\b(bilingual|multilingual|two\s+languages)\b`),
				ci(`\b(arabic|english|french|rtl|translations?)\b`),
			},
		},
	},
)

// DefaultCatalog returns the built-in business and feature catalog.
func DefaultCatalog() Catalog {
	return defaultCatalog
}
