package intake

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/status"
)

var longFacts = strings.Repeat("Trabajé como enfermera jefe con horario fijo y órdenes diarias. ", 3)

func TestDocumentExtractorPlainText(t *testing.T) {
	e := NewDocumentExtractor()

	text, err := e.ExtractText(context.Background(), []byte("  "+longFacts+"\n"), "text/plain; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(longFacts), text)

	_, err = e.ExtractText(context.Background(), []byte("muy corto"), MimePlain)
	assert.True(t, errors.Is(err, ErrExtraction))
	assert.True(t, errors.Is(err, ErrInsufficientText))

	_, err = e.ExtractText(context.Background(), []byte{0xff, 0xfe, 0xfd}, MimePlain)
	assert.True(t, errors.Is(err, ErrExtraction))
}

func TestDocumentExtractorRejectsUnknownTypes(t *testing.T) {
	_, err := NewDocumentExtractor().ExtractText(context.Background(), []byte("x"), "image/png")
	assert.True(t, errors.Is(err, ErrExtraction))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestDocumentExtractorInvalidPDF(t *testing.T) {
	_, err := NewDocumentExtractor().ExtractText(context.Background(), []byte("not a pdf"), MimePDF)
	assert.True(t, errors.Is(err, ErrExtraction))
}

func TestSufficientTextCountsRunes(t *testing.T) {
	_, err := sufficientText(strings.Repeat("ñ", MinTextLength-1))
	assert.Error(t, err)
	got, err := sufficientText(strings.Repeat("ñ", MinTextLength))
	require.NoError(t, err)
	assert.Len(t, []rune(got), MinTextLength)
}

func TestDetectMimeType(t *testing.T) {
	tests := []struct {
		declared, filename, want string
	}{
		{"application/pdf", "x.bin", "application/pdf"},
		{"", "expediente.PDF", "application/pdf"},
		{"application/octet-stream", "hechos.txt", "text/plain"},
		{"TEXT/PLAIN; charset=utf-8", "", "text/plain"},
		{"", "sin_extension", "application/octet-stream"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectMimeType(tt.declared, tt.filename), tt.filename)
	}
}

type stubTranscriber struct {
	text  string
	err   error
	calls int
}

func (s *stubTranscriber) Transcribe(ctx context.Context, audio []byte, filename, mimeType string) (Transcript, error) {
	s.calls++
	return Transcript{Text: s.text, Model: "stub"}, s.err
}

func TestLimitTranscriber(t *testing.T) {
	ctx := context.Background()

	t.Run("too large", func(t *testing.T) {
		next := &stubTranscriber{text: "hola"}
		_, err := NewLimitTranscriber(next).Transcribe(ctx, make([]byte, MaxAudioBytes+1), "entrevista.mp3", "audio/mpeg")
		assert.True(t, errors.Is(err, ErrTranscription))
		assert.True(t, errors.Is(err, ErrFileTooLarge))
		assert.Zero(t, next.calls)
	})

	t.Run("unsupported format", func(t *testing.T) {
		next := &stubTranscriber{text: "hola"}
		_, err := NewLimitTranscriber(next).Transcribe(ctx, []byte("x"), "entrevista.aac", "audio/aac")
		assert.True(t, errors.Is(err, ErrUnsupportedFormat))
		assert.Zero(t, next.calls)
	})

	t.Run("empty transcript", func(t *testing.T) {
		_, err := NewLimitTranscriber(&stubTranscriber{text: "  "}).Transcribe(ctx, []byte("x"), "a.wav", "audio/wav")
		assert.True(t, errors.Is(err, ErrTranscription))
	})

	t.Run("ok", func(t *testing.T) {
		tr, err := NewLimitTranscriber(&stubTranscriber{text: " hola \n"}).Transcribe(ctx, []byte("x"), "a.M4A", "audio/mp4")
		require.NoError(t, err)
		assert.Equal(t, "hola", tr.Text)
		assert.Equal(t, "stub", tr.Model)
	})
}

func TestWhisperTranscriber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "es", r.FormValue("language"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"Yo trabajaba de lunes a sábado"}`))
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	w := NewWhisperTranscriber(openai.NewClientWithConfig(cfg), "")

	tr, err := w.Transcribe(context.Background(), []byte("ID3"), "/tmp/entrevista.mp3", "audio/mpeg")
	require.NoError(t, err)
	assert.Equal(t, "Yo trabajaba de lunes a sábado", tr.Text)
	assert.Equal(t, "whisper-1", tr.Model)
}

func TestWhisperTranscriberError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	_, err := NewWhisperTranscriber(openai.NewClientWithConfig(cfg), "es").Transcribe(context.Background(), []byte("x"), "a.mp3", "")
	assert.True(t, errors.Is(err, ErrTranscription))
}

func TestVisionResponseText(t *testing.T) {
	resp := &visionpb.BatchAnnotateFilesResponse{
		Responses: []*visionpb.AnnotateFileResponse{{
			Responses: []*visionpb.AnnotateImageResponse{
				{FullTextAnnotation: &visionpb.TextAnnotation{Text: "Página uno\n"}},
				{},
				{FullTextAnnotation: &visionpb.TextAnnotation{Text: "Página dos"}},
			},
		}},
	}
	text, err := fileResponseText(resp)
	require.NoError(t, err)
	assert.Equal(t, "Página uno\n\nPágina dos", text)

	_, err = imageResponsesText([]*visionpb.AnnotateImageResponse{{Error: &status.Status{Message: "bad image"}}})
	assert.True(t, errors.Is(err, ErrExtraction))
}

func TestSpeechHelpers(t *testing.T) {
	assert.Equal(t, speechpb.RecognitionConfig_LINEAR16, inferSpeechEncoding("audio/wav", ""))
	assert.Equal(t, speechpb.RecognitionConfig_MP3, inferSpeechEncoding("", "a.mp3"))
	assert.Equal(t, speechpb.RecognitionConfig_OGG_OPUS, inferSpeechEncoding("audio/ogg", "a.ogg"))
	assert.Equal(t, speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, inferSpeechEncoding("", "a.m4a"))

	resp := &speechpb.LongRunningRecognizeResponse{Results: []*speechpb.SpeechRecognitionResult{
		{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: " Buenos días "}}},
		{},
		{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: "trabajé tres años"}}},
	}}
	assert.Equal(t, "Buenos días trabajé tres años", speechResponseText(resp))
}
