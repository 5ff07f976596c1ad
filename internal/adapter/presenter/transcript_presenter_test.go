package presenter

import (
	"testing"

	"github.com/google/uuid"

	"github.com/johnquangdev/radio-transcriber/internal/domain/entities"
)

func TestToSegmentResponse(t *testing.T) {
	seg := entities.EpisodeSegment{
		Start: 3,
		Utterances: []entities.Utterance{
			{Index: 3, Text: "Hola.", StartTime: 1, EndTime: 2, HasTiming: true, Language: entities.LanguagePrimary, Speaker: "Ana"},
			{Index: 4, Text: "Adiós.", Language: entities.LanguagePrimary, Speaker: "Speaker A"},
		},
		Evidence:        entities.EvidenceSet{entities.EvidencePatternMarker},
		DurationSeconds: 95,
	}
	resp := ToSegmentResponse(seg)
	if resp.Start != 3 || resp.End != 5 {
		t.Fatalf("range = [%d, %d)", resp.Start, resp.End)
	}
	if len(resp.Evidence) != 1 || resp.Evidence[0] != string(entities.EvidencePatternMarker) {
		t.Fatalf("evidence = %v", resp.Evidence)
	}
	if resp.Utterances[0].StartTime == nil || *resp.Utterances[0].EndTime != 2 {
		t.Fatal("timed utterance lost its times")
	}
	if resp.Utterances[1].StartTime != nil {
		t.Fatal("untimed utterance reported times")
	}
	if len(resp.Speakers) != 2 {
		t.Fatalf("speakers = %v", resp.Speakers)
	}

	empty := ToSegmentResponse(entities.EpisodeSegment{})
	if empty.Evidence == nil || empty.Speakers == nil {
		t.Fatal("empty lists should encode as [] not null")
	}
}

func TestToTranscriptListResponse(t *testing.T) {
	rec := entities.NewTranscriptRecord("a.m4a", "a_transcript.txt")
	rec.ID = uuid.MustParse("6f1c1f2e-8d9b-4d7a-9c55-7b0d0b9d8a11")
	rec.Speakers = []string{"Ana"}

	resp := ToTranscriptListResponse([]*entities.TranscriptRecord{rec, nil}, 21, 2, 10)
	if len(resp.Transcripts) != 1 || resp.Transcripts[0].ID != rec.ID.String() {
		t.Fatalf("transcripts = %+v", resp.Transcripts)
	}
	if resp.Pagination.TotalPages != 3 {
		t.Fatalf("total pages = %d", resp.Pagination.TotalPages)
	}
}
