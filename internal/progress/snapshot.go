package progress

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhisek/chemquest/internal/curriculum"
	"github.com/abhisek/chemquest/internal/store"
)

// SnapshotVersion is written into every stored profile.
const SnapshotVersion = 1

// ToSnapshot converts a profile into its stored form.
func ToSnapshot(p Profile) (*store.ProfileSnapshot, error) {
	snap := &store.ProfileSnapshot{
		UserID:  p.UserID,
		Version: SnapshotVersion,
		Stats: store.StatsData{
			TotalXP:        p.Stats.TotalXP,
			WeeklyXP:       p.Stats.WeeklyXP,
			WeekStart:      p.Stats.WeekStart,
			SessionsPlayed: p.Stats.SessionsPlayed,
		},
	}
	for _, lp := range p.Levels {
		snap.Levels = append(snap.Levels, store.LevelData{
			LevelID:        lp.LevelID,
			Unlocked:       lp.Unlocked,
			Completed:      lp.Completed,
			Score:          lp.Score,
			AnsweredIDs:    lp.AnsweredIDs,
			TotalQuestions: lp.TotalQuestions,
		})
	}
	for _, m := range p.Mistakes {
		q, err := json.Marshal(curriculum.DocFromQuestion(m.Question))
		if err != nil {
			return nil, fmt.Errorf("encode mistake %s: %w", m.ID, err)
		}
		snap.Mistakes = append(snap.Mistakes, store.MistakeData{
			ID:        m.ID,
			LevelID:   m.LevelID,
			Question:  q,
			Answer:    m.Answer,
			CreatedAt: m.CreatedAt,
		})
	}
	return snap, nil
}

// FromSnapshot restores a profile. Mistakes whose question can no longer be
// decoded are dropped and reported in the returned error slice.
func FromSnapshot(snap *store.ProfileSnapshot) (Profile, []error) {
	p := Profile{
		UserID: snap.UserID,
		Stats: Stats{
			TotalXP:        snap.Stats.TotalXP,
			WeeklyXP:       snap.Stats.WeeklyXP,
			WeekStart:      snap.Stats.WeekStart,
			SessionsPlayed: snap.Stats.SessionsPlayed,
		},
	}
	for _, ld := range snap.Levels {
		p.Levels = append(p.Levels, LevelProgress{
			LevelID:        ld.LevelID,
			Unlocked:       ld.Unlocked,
			Completed:      ld.Completed,
			Score:          ld.Score,
			AnsweredIDs:    union(nil, ld.AnsweredIDs),
			TotalQuestions: ld.TotalQuestions,
		})
	}

	var errs []error
	for _, md := range snap.Mistakes {
		var doc curriculum.QuestionDoc
		if err := json.Unmarshal(md.Question, &doc); err != nil {
			errs = append(errs, fmt.Errorf("decode mistake %s: %w", md.ID, err))
			continue
		}
		q, err := doc.ToQuestion()
		if err != nil {
			errs = append(errs, fmt.Errorf("decode mistake %s: %w", md.ID, err))
			continue
		}
		p.Mistakes = append(p.Mistakes, Mistake{
			ID:        md.ID,
			LevelID:   md.LevelID,
			Question:  q,
			Answer:    md.Answer,
			CreatedAt: md.CreatedAt,
		})
	}
	return p, errs
}

// Load reads the profile for userID, or starts a new one, and syncs it
// against the curriculum.
func Load(ctx context.Context, repo store.ProfileRepo, userID string, reg *curriculum.Registry) (Profile, []error, error) {
	snap, err := repo.Load(ctx, userID)
	if err != nil {
		return Profile{}, nil, fmt.Errorf("load profile: %w", err)
	}
	p := New(userID)
	var warnings []error
	if snap != nil {
		p, warnings = FromSnapshot(snap)
		p.UserID = userID
	}
	return Sync(p, reg), warnings, nil
}
