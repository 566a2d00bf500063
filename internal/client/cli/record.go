package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/stillmind/stillmind/internal/client/models"
	"github.com/stillmind/stillmind/internal/client/repositories/records"
	"github.com/stillmind/stillmind/internal/client/services"
	"github.com/stillmind/stillmind/internal/common"
)

// putEnvelope wraps a typed payload and stores it as a pending record. The
// write is local; the sync layer picks it up on the next pass.
func putEnvelope[T models.TypedPayload](a *App, ctx context.Context, id string, v T) error {
	env, err := models.Wrap(v)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return a.syncService.Put(ctx, id, v.GetKind(), payload, a.ownerId, services.PutOptions{})
}

// LogSession collects a finished meditation session and stores it locally.
func (a *App) LogSession(ctx context.Context) error {
	technique, err := GetSimpleText(a.reader, "Enter technique", os.Stdout)
	if err != nil {
		return err
	}
	duration, err := GetInt(a.reader, "Enter duration (minutes)", 10, os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	mood, err := GetInt(a.reader, "Mood after, 1-5 (optional)", 0, os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	session := models.Session{
		Technique:   technique,
		DurationMin: duration,
		CompletedAt: time.Now().UTC(),
		MoodAfter:   mood,
	}
	if err := putEnvelope(a, ctx, uuid.NewString(), session); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	fmt.Println("Session logged.")
	return nil
}

// AddJournal collects a journal entry and stores it locally.
func (a *App) AddJournal(ctx context.Context) error {
	mood, err := GetInt(a.reader, "Mood, 1-5", 3, os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	text, err := GetMultiline(a.reader, "Enter journal text (double Enter to finish):", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	entry := models.JournalEntry{Mood: mood, Text: text, WrittenAt: time.Now().UTC()}
	if err := putEnvelope(a, ctx, uuid.NewString(), entry); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	fmt.Println("Journal entry added.")
	return nil
}

// SetPreference stores a named preference. The record id derives from the
// name so repeated sets update in place.
func (a *App) SetPreference(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Enter preference name", os.Stdout)
	if err != nil {
		return err
	}
	value, err := GetSimpleText(a.reader, "Enter value", os.Stdout)
	if err != nil {
		return err
	}

	pref := models.Preference{Name: name, Value: value}
	if err := putEnvelope(a, ctx, "pref:"+a.ownerId+":"+name, pref); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	fmt.Println("Preference saved.")
	return nil
}

// List prints the owner's records of one kind, newest first.
func (a *App) List(ctx context.Context) error {
	k, err := GetSimpleText(a.reader, "Enter kind (session, progress, preference, journal, audio, achievement)", os.Stdout)
	if err != nil {
		return err
	}
	if k == "" {
		k = string(models.KindSession)
	}
	kind := models.Kind(k)
	if !kind.Valid() {
		fmt.Println("Unknown kind:", k)
		return common.ErrUnknownKind
	}

	recs, err := a.syncService.List(ctx, a.ownerId, kind, records.ListFilter{
		SortBy: records.SortByLastModified,
		Desc:   true,
	})
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	for _, rec := range recs {
		fmt.Printf("%s  [%s]  %s\n", rec.Id, rec.SyncState, rec.LastModifiedLocal.Format(time.RFC3339))
	}
	fmt.Printf("%d record(s)\n", len(recs))
	return nil
}

// Show fetches and displays a single record by ID, decoding the payload
// into its concrete variant.
func (a *App) Show(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter record id to show", os.Stdout)
	if err != nil {
		return err
	}

	rec, err := a.syncService.Get(ctx, id, "", a.ownerId)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	var env models.Envelope
	if err := json.Unmarshal(rec.Payload, &env); err != nil {
		return err
	}
	x, err := env.Unwrap()
	if err != nil {
		return err
	}

	log.Printf("Kind: %s, state: %s, version: %d", rec.Kind, rec.SyncState, rec.RemoteVersion)

	switch item := x.(type) {
	case models.Session:
		log.Printf("Technique: %s", item.Technique)
		log.Printf("Duration: %d min", item.DurationMin)
		log.Printf("Completed: %s", item.CompletedAt.Format(time.RFC3339))

	case models.Progress:
		log.Printf("Total sessions: %d", item.TotalSessions)
		log.Printf("Total minutes: %d", item.TotalMinutes)
		log.Printf("Current streak: %d", item.CurrentStreak)

	case models.Preference:
		log.Printf("%s = %s", item.Name, item.Value)

	case models.JournalEntry:
		log.Printf("Mood: %d", item.Mood)
		log.Printf("%s", item.Text)

	case models.Audio:
		log.Printf("Title: %s", item.Title)
		log.Printf("Content key: %s", item.ContentKey)

	case models.Achievement:
		log.Printf("Achievement: %s", item.Code)
	}

	if rec.LastError != "" {
		log.Printf("Last error: %s", rec.LastError)
	}
	return nil
}

// Status prints a snapshot of the sync layer.
func (a *App) Status(ctx context.Context) error {
	status, err := a.syncService.Status(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	fmt.Printf("Online: %v\n", status.IsOnline)
	fmt.Printf("Pending records: %d\n", status.PendingCount)
	fmt.Printf("Sync in progress: %v\n", status.SyncInProgress)
	fmt.Printf("Auto sync: %v\n", status.AutoSyncEnabled)
	if status.LastSyncTime.IsZero() {
		fmt.Println("Last sync: never")
	} else {
		fmt.Printf("Last sync: %s\n", status.LastSyncTime.Format(time.RFC3339))
	}
	return nil
}

// Sync triggers one reconciliation pass with the backend.
func (a *App) Sync(ctx context.Context) error {
	result, err := a.syncService.Sync(ctx, a.ownerId)
	if err != nil {
		if errors.Is(err, common.ErrSyncInProgress) {
			fmt.Println("A sync is already running.")
			return nil
		}
		log.Printf("error: %v", err)
		return err
	}

	fmt.Printf("Synced: %d, pulled: %d, conflicts: %d, errors: %d\n",
		result.Synced, result.Pulled, result.Conflicts, result.Errors)
	for _, re := range result.ErrorList {
		fmt.Printf("  %s (%s): %s\n", re.Id, re.Kind, re.Message)
	}
	return nil
}

// Cleanup deletes local records, cached content and sync logs older than the
// given number of days.
func (a *App) Cleanup(ctx context.Context) error {
	days, err := GetInt(a.reader, "Delete data older than (days)", 30, os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	if err := a.syncService.Cleanup(ctx, time.Duration(days)*24*time.Hour); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	fmt.Println("Cleanup finished.")
	return nil
}
