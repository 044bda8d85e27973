package intake

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"
)

// MaxAudioBytes is the largest accepted interview recording
const MaxAudioBytes = 25 << 20

// SupportedAudioFormats lists accepted audio file extensions, without the dot
var SupportedAudioFormats = []string{"mp3", "wav", "m4a", "ogg", "flac", "webm", "mp4", "mpeg", "mpga"}

// Transcript is the text of a recording plus the model that produced it
type Transcript struct {
	Text  string
	Model string
}

// Transcriber converts interview audio to text
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename, mimeType string) (Transcript, error)
}

// LimitTranscriber enforces the size and format limits before delegating
type LimitTranscriber struct {
	next Transcriber
}

func NewLimitTranscriber(next Transcriber) *LimitTranscriber {
	return &LimitTranscriber{next: next}
}

func (t *LimitTranscriber) Transcribe(ctx context.Context, audio []byte, filename, mimeType string) (Transcript, error) {
	if len(audio) > MaxAudioBytes {
		return Transcript{}, fmt.Errorf("%w: %w: %d bytes, max %d MB", ErrTranscription, ErrFileTooLarge, len(audio), MaxAudioBytes>>20)
	}
	if len(audio) == 0 {
		return Transcript{}, fmt.Errorf("%w: empty audio file", ErrTranscription)
	}
	if !IsSupportedAudio(filename) {
		return Transcript{}, fmt.Errorf("%w: %w: %q, supported: %s",
			ErrTranscription, ErrUnsupportedFormat, filepath.Ext(filename), strings.Join(SupportedAudioFormats, ", "))
	}

	tr, err := t.next.Transcribe(ctx, audio, filename, mimeType)
	if err != nil {
		return Transcript{}, err
	}
	tr.Text = strings.TrimSpace(tr.Text)
	if tr.Text == "" {
		return Transcript{}, fmt.Errorf("%w: empty transcript", ErrTranscription)
	}
	return tr, nil
}

// IsSupportedAudio reports whether filename has an accepted audio extension
func IsSupportedAudio(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	for _, f := range SupportedAudioFormats {
		if ext == f {
			return true
		}
	}
	return false
}

// WhisperTranscriber uses the OpenAI audio transcription API
type WhisperTranscriber struct {
	client   *openai.Client
	language string
}

func NewWhisperTranscriber(client *openai.Client, language string) *WhisperTranscriber {
	if language == "" {
		language = "es"
	}
	return &WhisperTranscriber{client: client, language: language}
}

func (w *WhisperTranscriber) Transcribe(ctx context.Context, audio []byte, filename, mimeType string) (Transcript, error) {
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: filepath.Base(filename),
		Reader:   bytes.NewReader(audio),
		Language: w.language,
	})
	if err != nil {
		return Transcript{}, fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	return Transcript{Text: resp.Text, Model: openai.Whisper1}, nil
}

// SpeechTranscriber uses Cloud Speech-to-Text long running recognition
type SpeechTranscriber struct {
	client       *speech.Client
	languageCode string
}

// NewSpeechTranscriber opens a Speech client. An empty credentialsFile uses
// application default credentials.
func NewSpeechTranscriber(ctx context.Context, credentialsFile, languageCode string) (*SpeechTranscriber, error) {
	opts := []option.ClientOption{}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	if languageCode == "" {
		languageCode = "es-CO"
	}
	return &SpeechTranscriber{client: client, languageCode: languageCode}, nil
}

func (s *SpeechTranscriber) Close() error {
	return s.client.Close()
}

func (s *SpeechTranscriber) Transcribe(ctx context.Context, audio []byte, filename, mimeType string) (Transcript, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	op, err := s.client.LongRunningRecognize(ctx, &speechpb.LongRunningRecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   inferSpeechEncoding(mimeType, filename),
			LanguageCode:               s.languageCode,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{AudioSource: &speechpb.RecognitionAudio_Content{Content: audio}},
	})
	if err != nil {
		return Transcript{}, fmt.Errorf("%w: speech LongRunningRecognize: %v", ErrTranscription, err)
	}
	resp, err := op.Wait(ctx)
	if err != nil {
		return Transcript{}, fmt.Errorf("%w: speech wait: %v", ErrTranscription, err)
	}
	return Transcript{Text: speechResponseText(resp), Model: "google-speech-" + s.languageCode}, nil
}

func inferSpeechEncoding(mimeType, filename string) speechpb.RecognitionConfig_AudioEncoding {
	m := strings.ToLower(strings.TrimSpace(mimeType))
	ext := strings.ToLower(filepath.Ext(filename))

	switch {
	case strings.Contains(m, "wav") || ext == ".wav":
		return speechpb.RecognitionConfig_LINEAR16
	case strings.Contains(m, "flac") || ext == ".flac":
		return speechpb.RecognitionConfig_FLAC
	case strings.Contains(m, "mpeg") || strings.Contains(m, "mp3") || ext == ".mp3" || ext == ".mpga" || ext == ".mpeg":
		return speechpb.RecognitionConfig_MP3
	case strings.Contains(m, "ogg") || ext == ".ogg":
		return speechpb.RecognitionConfig_OGG_OPUS
	case strings.Contains(m, "webm") || ext == ".webm":
		return speechpb.RecognitionConfig_WEBM_OPUS
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}

func speechResponseText(resp *speechpb.LongRunningRecognizeResponse) string {
	var b strings.Builder
	for _, r := range resp.GetResults() {
		alts := r.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		t := strings.TrimSpace(alts[0].GetTranscript())
		if t == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(t)
	}
	return b.String()
}
