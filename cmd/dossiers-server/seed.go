package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dossiers/dossiers/internal/domain"
	"github.com/dossiers/dossiers/internal/domain/consultation"
	"github.com/dossiers/dossiers/internal/domain/patient"
)

// roster is the seed file layout.
//
//	user: clinician-uuid
//	patients:
//	  - nom: Martin
//	    prenom: Léa
//	    date_naissance: 2024-03-02
//	    secteur: Néonat
//	consultations:
//	  - date: 2024-05-10
//	    type: staff
//	    attendees: |
//	      Martin Léa
//	      Dupont
type roster struct {
	User          string               `yaml:"user"`
	Patients      []rosterPatient      `yaml:"patients"`
	Consultations []rosterConsultation `yaml:"consultations"`
}

type rosterPatient struct {
	Nom           string `yaml:"nom"`
	Prenom        string `yaml:"prenom"`
	DateNaissance string `yaml:"date_naissance"`
	Sexe          string `yaml:"sexe"`
	Secteur       string `yaml:"secteur"`
	Notes         string `yaml:"notes"`
}

type rosterConsultation struct {
	Date      string `yaml:"date"`
	Type      string `yaml:"type"`
	Titre     string `yaml:"titre"`
	Tags      string `yaml:"tags"`
	Attendees string `yaml:"attendees"`
}

func parseRoster(r io.Reader) (*roster, error) {
	var out roster
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	return &out, nil
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

func parseOptionalDate(field, s string) (domain.Date, error) {
	if strings.TrimSpace(s) == "" {
		return domain.Date{}, nil
	}
	d, err := domain.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return domain.Date{}, fmt.Errorf("%s %q: %w", field, s, err)
	}
	return d, nil
}

func (r rosterPatient) toPatient(user string) (*patient.Patient, error) {
	birth, err := parseOptionalDate("date_naissance", r.DateNaissance)
	if err != nil {
		return nil, err
	}
	return &patient.Patient{
		UserID:        optional(user),
		Nom:           r.Nom,
		Prenom:        r.Prenom,
		DateNaissance: birth,
		Sexe:          optional(r.Sexe),
		Secteur:       optional(r.Secteur),
		Notes:         optional(r.Notes),
	}, nil
}

func (r rosterConsultation) toConsultation(user string) (*consultation.Consultation, error) {
	date, err := parseOptionalDate("date", r.Date)
	if err != nil {
		return nil, err
	}
	if !date.Valid() {
		date = domain.Today()
	}
	typ := r.Type
	if typ == "" {
		typ = consultation.DefaultType
	}
	return &consultation.Consultation{
		UserID: optional(user),
		Date:   date,
		Type:   typ,
		Titre:  optional(r.Titre),
		Tags:   optional(r.Tags),
	}, nil
}

type seedReport struct {
	Patients      int
	Consultations int
	Observations  int
	Unmatched     []string
}

// seed creates the roster's patients, then its consultations, importing each
// consultation's attendee list against the full patient roster.
func (a *app) seed(ctx context.Context, r *roster) (*seedReport, error) {
	rep := &seedReport{}
	for i, rp := range r.Patients {
		p, err := rp.toPatient(r.User)
		if err != nil {
			return rep, fmt.Errorf("patient %d: %w", i+1, err)
		}
		if err := a.patients.CreatePatient(ctx, p); err != nil {
			return rep, fmt.Errorf("patient %d (%s %s): %w", i+1, rp.Nom, rp.Prenom, err)
		}
		rep.Patients++
	}
	for i, rc := range r.Consultations {
		c, err := rc.toConsultation(r.User)
		if err != nil {
			return rep, fmt.Errorf("consultation %d: %w", i+1, err)
		}
		if err := a.consultations.CreateConsultation(ctx, c); err != nil {
			return rep, fmt.Errorf("consultation %d: %w", i+1, err)
		}
		rep.Consultations++
		if strings.TrimSpace(rc.Attendees) == "" {
			continue
		}
		res, err := a.consultations.ImportAttendees(ctx, c.ID, rc.Attendees, r.User)
		if err != nil {
			return rep, fmt.Errorf("consultation %d attendees: %w", i+1, err)
		}
		rep.Observations += len(res.Created)
		for _, u := range res.Unmatched {
			rep.Unmatched = append(rep.Unmatched, u.Name)
		}
	}
	return rep, nil
}

func seedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load patients and consultations from a YAML roster",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()
			r, err := parseRoster(f)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			cfg, pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			a, err := newApp(cfg, pool, nil, zerolog.Nop())
			if err != nil {
				return err
			}
			defer a.Close()

			rep, err := a.seed(ctx, r)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created %d patient(s), %d consultation(s), %d observation(s).\n",
				rep.Patients, rep.Consultations, rep.Observations)
			for _, name := range rep.Unmatched {
				fmt.Fprintf(out, "  unmatched attendee: %s\n", name)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "roster.yaml", "Roster file to load")
	return cmd
}
