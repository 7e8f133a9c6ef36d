package main

import (
	"context"
	"log"
	"net/url"
	"strings"
	"time"

	"bssaj-admin/internal/apiclient"
	"bssaj-admin/internal/config"
	"bssaj-admin/internal/form"
	"bssaj-admin/internal/resources"
	"bssaj-admin/internal/validation"
)

type seeder struct {
	client    *apiclient.Client
	validator *validation.Validator
	encoder   *form.Encoder
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s := &seeder{
		client: apiclient.New(apiclient.Options{
			BaseURL:    cfg.APIBaseURL,
			Token:      cfg.APIToken,
			Timeout:    cfg.APITimeout,
			MaxRetries: cfg.APIMaxRetries,
		}),
		validator: validation.New(),
		encoder:   form.NewEncoder(),
	}

	banners := []resources.BannerForm{
		{Title: "Annual General Meeting 2025", Link: "https://bssaj.org/events/agm", IsActive: true, Position: 1},
		{Title: "Scholarship applications open", Link: "https://bssaj.org/scholarships", IsActive: true, Position: 2},
	}
	bannerCol := apiclient.NewCollection[resources.Banner](s.client, "banners")
	for _, b := range banners {
		if seedOne(ctx, s, bannerCol, b.Title, b, form.BodyMultipart, func(x resources.Banner) string { return x.Title }) {
			log.Printf("banner %q created", b.Title)
		}
	}

	committees := []resources.CommitteeForm{
		{Name: "Rahim Uddin", Designation: "PRESIDENT", Email: "president@bssaj.org", TermStart: 2024, TermEnd: 2026},
		{Name: "Nusrat Jahan", Designation: "GENERAL_SECRETARY", Email: "secretary@bssaj.org", TermStart: 2024, TermEnd: 2026},
		{Name: "Kenji Sato", Designation: "TREASURER", TermStart: 2024},
	}
	committeeCol := apiclient.NewCollection[resources.Committee](s.client, "committees")
	for _, c := range committees {
		if seedOne(ctx, s, committeeCol, c.Name, c, form.BodyMultipart, func(x resources.Committee) string { return x.Name }) {
			log.Printf("committee member %q created", c.Name)
		}
	}

	scholarships := []resources.ScholarshipForm{
		{
			Title:       "MEXT Research Scholarship",
			Provider:    "Ministry of Education, Japan",
			Description: "Full tuition and monthly stipend for graduate research students.",
			Amount:      143000,
			Currency:    "JPY",
			StartYear:   2025,
			EndYear:     2027,
			Website:     "https://www.studyinjapan.go.jp",
			Deadline:    form.NewDate(2025, time.May, 31),
		},
		{
			Title:       "JASSO Honors Scholarship",
			Provider:    "JASSO",
			Description: "Monthly support for privately financed international students.",
			Amount:      48000,
			Currency:    "JPY",
			StartYear:   2025,
			EndYear:     2026,
		},
	}
	scholarshipCol := apiclient.NewCollection[resources.Scholarship](s.client, "scholarships")
	for _, sc := range scholarships {
		if seedOne(ctx, s, scholarshipCol, sc.Title, sc, form.BodyJSON, func(x resources.Scholarship) string { return x.Title }) {
			log.Printf("scholarship %q created", sc.Title)
		}
	}

	log.Println("seed complete")
}

// seedOne creates value unless a record with the same name already exists.
func seedOne[T any](ctx context.Context, s *seeder, col *apiclient.Collection[T], name string, value any, kind form.BodyKind, nameOf func(T) string) bool {
	if err := s.validator.Struct(value); err != nil {
		log.Printf("%s %q skipped: %v", col.Name(), name, s.validator.Messages(err))
		return false
	}

	page, err := col.List(ctx, url.Values{"search": {name}})
	if err != nil {
		log.Fatalf("%s list: %v", col.Name(), err)
	}
	for _, existing := range page.Data {
		if strings.EqualFold(nameOf(existing), name) {
			return false
		}
	}

	var fields url.Values
	if kind == form.BodyMultipart {
		if fields, err = s.encoder.Payload(value); err != nil {
			log.Fatalf("%s encode: %v", col.Name(), err)
		}
	}
	if _, err := col.Create(ctx, form.BuildBody(kind, value, fields, nil)); err != nil {
		log.Printf("%s %q failed: %s", col.Name(), name, apiclient.MessageOr(err, err.Error()))
		return false
	}
	return true
}
