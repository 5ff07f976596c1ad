package presenter

import (
	"github.com/johnquangdev/radio-transcriber/internal/adapter/dto/common"
	"github.com/johnquangdev/radio-transcriber/internal/adapter/dto/transcript"
	"github.com/johnquangdev/radio-transcriber/internal/domain/entities"
	"github.com/johnquangdev/radio-transcriber/internal/usecase/formatter"
	"github.com/johnquangdev/radio-transcriber/internal/usecase/pipeline"
)

// ToUtterances converts request utterances to engine input. Utterances need
// both times to count as timed.
func ToUtterances(in []transcript.UtteranceInput) []entities.Utterance {
	out := make([]entities.Utterance, 0, len(in))
	for i, u := range in {
		var utt entities.Utterance
		if u.StartTime != nil && u.EndTime != nil {
			utt = entities.NewUtterance(i, u.Text, *u.StartTime, *u.EndTime)
		} else {
			utt = entities.NewUntimedUtterance(i, u.Text)
		}
		if u.Language != "" {
			utt.Language = entities.LanguageTag(u.Language)
		}
		out = append(out, utt)
	}
	return entities.Normalize(out)
}

// ToTracks converts request tracks to speaker tracks
func ToTracks(in []transcript.TrackInput) []entities.SpeakerTrack {
	out := make([]entities.SpeakerTrack, len(in))
	for i, t := range in {
		out[i] = entities.SpeakerTrack{TrackID: t.TrackID, StartTime: t.StartTime, EndTime: t.EndTime}
	}
	return out
}

// ToProcessResponse converts a pipeline result to its DTO
func ToProcessResponse(r *pipeline.Result) *transcript.ProcessResponse {
	if r == nil {
		return nil
	}
	resp := &transcript.ProcessResponse{
		AudioPath:        r.AudioPath,
		ObjectName:       r.ObjectName,
		Skipped:          r.Skipped,
		Backend:          r.Backend,
		Episodes:         len(r.Segments),
		ProcessingTimeMs: r.ProcessingTime.Milliseconds(),
		Text:             r.Text,
	}
	if entities.DurationKnown(r.DurationSeconds) {
		resp.DurationSeconds = r.DurationSeconds
	}
	return resp
}

// ToSegmentResponse converts a labeled segment to its DTO
func ToSegmentResponse(seg entities.EpisodeSegment) transcript.SegmentResponse {
	utts := make([]transcript.UtteranceResponse, len(seg.Utterances))
	for i, u := range seg.Utterances {
		utts[i] = transcript.UtteranceResponse{
			Index:    u.Index,
			Speaker:  u.Speaker,
			Text:     u.Text,
			Language: string(u.Language),
		}
		if u.HasTiming {
			start, end := u.StartTime, u.EndTime
			utts[i].StartTime = &start
			utts[i].EndTime = &end
		}
	}

	evidence := seg.Evidence.Strings()
	if evidence == nil {
		evidence = []string{}
	}
	speakers := seg.Speakers()
	if speakers == nil {
		speakers = []string{}
	}
	return transcript.SegmentResponse{
		Start:           seg.Start,
		End:             seg.End(),
		Evidence:        evidence,
		DurationSeconds: seg.DurationSeconds,
		Oversized:       seg.Oversized,
		Announcement:    seg.Announcement,
		Speakers:        speakers,
		Utterances:      utts,
	}
}

// ToSegmentResultResponse converts engine output to the API response
func ToSegmentResultResponse(segs []entities.EpisodeSegment) *transcript.SegmentResultResponse {
	out := make([]transcript.SegmentResponse, len(segs))
	for i, seg := range segs {
		out[i] = ToSegmentResponse(seg)
	}
	return &transcript.SegmentResultResponse{
		Segments: out,
		Text:     formatter.RenderEpisodes(segs),
	}
}

// ToTranscriptSummaryResponse converts a catalog record to its DTO
func ToTranscriptSummaryResponse(r *entities.TranscriptRecord) *transcript.TranscriptSummaryResponse {
	if r == nil {
		return nil
	}
	speakers := []string(r.Speakers)
	if speakers == nil {
		speakers = []string{}
	}
	return &transcript.TranscriptSummaryResponse{
		ID:               r.ID.String(),
		SourceFile:       r.SourceFile,
		ObjectName:       r.ObjectName,
		Backend:          r.Backend,
		Language:         r.Language,
		DurationSeconds:  r.DurationSeconds,
		EpisodeCount:     r.EpisodeCount,
		HasTracks:        r.HasTracks,
		Speakers:         speakers,
		ProcessingTimeMs: int64(r.ProcessingTime),
		CreatedAt:        r.CreatedAt,
	}
}

// ToTranscriptListResponse converts a page of catalog records
func ToTranscriptListResponse(records []*entities.TranscriptRecord, total int64, page, pageSize int) *transcript.TranscriptListResponse {
	items := make([]transcript.TranscriptSummaryResponse, 0, len(records))
	for _, r := range records {
		if s := ToTranscriptSummaryResponse(r); s != nil {
			items = append(items, *s)
		}
	}
	return &transcript.TranscriptListResponse{
		Transcripts: items,
		Pagination:  common.NewPagination(total, page, pageSize),
	}
}
