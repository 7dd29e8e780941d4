package main

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/germanamz/promptly/pkg/settings"
	"github.com/germanamz/promptly/pkg/state"
)

// settingsForm holds the editable fields as text, the way they are stored.
type settingsForm struct {
	APIBaseURL   string
	Model        string
	TokenizerURL string
	Params       settings.Params
	APIKey       string
}

func formFromSnapshot(snap state.Snapshot) settingsForm {
	return settingsForm{
		APIBaseURL:   snap.APIBaseURL,
		Model:        snap.Model,
		TokenizerURL: snap.TokenizerURL,
		Params:       snap.Params,
		APIKey:       snap.Meta.APIKey,
	}
}

func runSettings(args []string) error {
	fs := flag.NewFlagSet("settings", flag.ExitOnError)
	var opts options
	opts.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := setup(opts)
	if err != nil {
		return err
	}
	defer env.close()

	st := env.engine.State()
	f := formFromSnapshot(st.Snapshot())

	if err := newSettingsForm(&f).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}

	if err := applySettingsForm(st, f); err != nil {
		return err
	}

	fmt.Println("Settings saved.")

	return nil
}

func newSettingsForm(f *settingsForm) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("API base URL").Value(&f.APIBaseURL).Validate(validateOptionalURL),
			huh.NewInput().Title("Model (optional)").Value(&f.Model),
			huh.NewInput().
				Title("Tokenizer URL (optional)").
				Description("Set it to use the raw completions endpoint.").
				Value(&f.TokenizerURL).
				Validate(validateOptionalURL),
			huh.NewInput().
				Title("API key").
				Description("Stored locally, never shared. Leave empty to remove.").
				EchoMode(huh.EchoModePassword).
				Value(&f.APIKey),
		),
		huh.NewGroup(
			huh.NewInput().Title("Max tokens").Value(&f.Params.MaxTokens).Validate(validateOptionalInt),
			huh.NewInput().Title("Temperature").Value(&f.Params.Temperature).Validate(validateOptionalFloat),
			huh.NewInput().Title("Top K").Value(&f.Params.TopK).Validate(validateOptionalInt),
			huh.NewInput().Title("Top P").Value(&f.Params.TopP).Validate(validateOptionalFloat),
			huh.NewInput().Title("Frequency penalty").Value(&f.Params.FrequencyPenalty).Validate(validateOptionalFloat),
			huh.NewInput().Title("Presence penalty").Value(&f.Params.PresencePenalty).Validate(validateOptionalFloat),
		).Title("Parameters").Description("Empty fields are left out of requests."),
	)
}

// applySettingsForm stores the connection settings and parameters, and
// the credential when it changed.
func applySettingsForm(st *state.Engine, f settingsForm) error {
	st.Update(func(s *settings.Settings) {
		s.APIBaseURL = strings.TrimSpace(f.APIBaseURL)
		s.Model = strings.TrimSpace(f.Model)
		s.TokenizerURL = strings.TrimSpace(f.TokenizerURL)
		s.Params = f.Params
	})

	key := strings.TrimSpace(f.APIKey)
	if key == st.Snapshot().Meta.APIKey {
		return nil
	}

	return st.SetAPIKey(key)
}

func validateOptionalURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("must be an absolute URL")
	}

	return nil
}

func validateOptionalInt(s string) error {
	if strings.TrimSpace(s) == "" || settings.ParseInt(s) != nil {
		return nil
	}

	return fmt.Errorf("must be a whole number")
}

func validateOptionalFloat(s string) error {
	if strings.TrimSpace(s) == "" || settings.ParseFloat(s) != nil {
		return nil
	}

	return fmt.Errorf("must be a number")
}
