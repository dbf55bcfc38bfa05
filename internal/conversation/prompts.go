package conversation

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"scanrate_backend/platform/validator"
)

//go:embed prompts.yaml
var promptsSource []byte

// Prompts holds every message the bot sends. Keeping them in one embedded
// file makes the copy reviewable without digging through transition code.
type Prompts struct {
	Start             string `yaml:"start" validate:"required"`
	Recognized        string `yaml:"recognized" validate:"required"`
	RecognitionFailed string `yaml:"recognitionFailed" validate:"required"`
	PhotoUnsupported  string `yaml:"photoUnsupported" validate:"required"`
	EmptyCode         string `yaml:"emptyCode" validate:"required"`
	Searching         string `yaml:"searching" validate:"required"`
	FoundOnline       string `yaml:"foundOnline" validate:"required"`
	NotFoundOnline    string `yaml:"notFoundOnline" validate:"required"`
	NameAccepted      string `yaml:"nameAccepted" validate:"required"`
	AskQuality        string `yaml:"askQuality" validate:"required"`
	InvalidQuality    string `yaml:"invalidQuality" validate:"required"`
	AskReview         string `yaml:"askReview" validate:"required"`
	Thanks            string `yaml:"thanks" validate:"required"`
	KeepExisting      string `yaml:"keepExisting" validate:"required"`
	Cancelled         string `yaml:"cancelled" validate:"required"`
	TryAgain          string `yaml:"tryAgain" validate:"required"`
	ProductHeader     string `yaml:"productHeader" validate:"required"`
	ReviewsHeader     string `yaml:"reviewsHeader" validate:"required"`
	ReviewLine        string `yaml:"reviewLine" validate:"required"`
	NoOtherReviews    string `yaml:"noOtherReviews" validate:"required"`
	WorstReview       string `yaml:"worstReview" validate:"required"`
	BestReview        string `yaml:"bestReview" validate:"required"`
	OwnReview         string `yaml:"ownReview" validate:"required"`
	AskUpdate         string `yaml:"askUpdate" validate:"required"`
}

func LoadPrompts() (Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(promptsSource, &p); err != nil {
		return Prompts{}, fmt.Errorf("parse prompts: %w", err)
	}
	if err := validator.New().Struct(p); err != nil {
		return Prompts{}, fmt.Errorf("validate prompts: %w", err)
	}
	return p, nil
}
