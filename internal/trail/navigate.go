package trail

import (
	"context"
	"fmt"
	"net/url"
)

// ValidateURL accepts only absolute http and https addresses.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("invalid URL %q: must be absolute, e.g. https://trailhead.salesforce.com/", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL %q: scheme %q is not allowed", rawURL, u.Scheme)
	}
	return nil
}

// Goto loads rawURL in p and returns the resulting page title.
func Goto(ctx context.Context, p Page, rawURL string) (string, error) {
	if err := ValidateURL(rawURL); err != nil {
		return "", err
	}
	if err := p.Navigate(ctx, rawURL); err != nil {
		return "", fmt.Errorf("navigation to %s failed: %w", rawURL, err)
	}
	title, err := p.Title(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read page title: %w", err)
	}
	return title, nil
}
