package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/dmitrijs2005/fieldreport/internal/agent/models"
)

// Capture walks the user through a new incident report. The record is
// durably stored before any network activity; the sync engine ships it when
// the server is reachable.
func (a *App) Capture(ctx context.Context) error {
	r := &models.Report{Author: a.userName}

	var err error
	if r.Municipality, err = getSimpleText(a.reader, "Municipality", os.Stdout); err != nil {
		return err
	}
	if r.Community, err = getSimpleText(a.reader, "Community", os.Stdout); err != nil {
		return err
	}

	needType, err := getSimpleText(a.reader,
		"Need type (Agua Potable, Luz Eléctrica, Drenaje, Salud, Educación, Seguridad, Otro)", os.Stdout)
	if err != nil {
		return err
	}
	r.NeedType = models.NeedType(needType)

	if r.Description, err = GetMultiline(a.reader, "Description", os.Stdout); err != nil {
		return err
	}

	if r.Location, err = a.readLocation(); err != nil {
		return err
	}

	evidencePath, err := getSimpleText(a.reader, "Evidence photo path (empty to skip)", os.Stdout)
	if err != nil {
		return err
	}
	if evidencePath != "" {
		data, err := os.ReadFile(evidencePath)
		if err != nil {
			log.Printf("Error reading evidence file: %s", err.Error())
			return err
		}
		r.EvidenceBase64 = base64.StdEncoding.EncodeToString(data)
	}

	rec, err := a.reports.Capture(ctx, r)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	fmt.Printf("Report #%d saved locally, pending sync\n", rec.LocalKey)
	return nil
}

// AddPerson captures a new community contact.
func (a *App) AddPerson(ctx context.Context) error {
	p := &models.Person{}

	var err error
	if p.Name, err = getSimpleText(a.reader, "Name", os.Stdout); err != nil {
		return err
	}
	if p.Role, err = getSimpleText(a.reader, "Role (e.g. delegado, comité de agua)", os.Stdout); err != nil {
		return err
	}
	if p.Phone, err = getSimpleText(a.reader, "Phone (empty to skip)", os.Stdout); err != nil {
		return err
	}
	if p.Community, err = getSimpleText(a.reader, "Community", os.Stdout); err != nil {
		return err
	}

	rec, err := a.people.Capture(ctx, p)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	fmt.Printf("Contact #%d saved locally, pending sync\n", rec.LocalKey)
	return nil
}

func (a *App) readLocation() (models.Location, error) {
	var loc models.Location

	raw, err := getSimpleText(a.reader, "Latitude (empty to skip geotag)", os.Stdout)
	if err != nil {
		return loc, err
	}
	if raw == "" {
		return loc, nil
	}
	if loc.Lat, err = strconv.ParseFloat(raw, 64); err != nil {
		log.Printf("Invalid latitude, skipping geotag")
		return models.Location{}, nil
	}

	raw, err = getSimpleText(a.reader, "Longitude", os.Stdout)
	if err != nil {
		return loc, err
	}
	if loc.Lng, err = strconv.ParseFloat(raw, 64); err != nil {
		log.Printf("Invalid longitude, skipping geotag")
		return models.Location{}, nil
	}

	return loc, nil
}
