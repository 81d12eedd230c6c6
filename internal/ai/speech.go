package ai

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Raw TTS output format: 16-bit signed PCM, mono, 24 kHz.
const (
	pcmSampleRate    = 24000
	pcmChannels      = 1
	pcmBitsPerSample = 16
)

// SpeechService reads assistant replies aloud for shop owners who prefer
// listening over reading.
type SpeechService interface {
	// Synthesize renders text to a playable WAV file.
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type Speech struct {
	client *openai.Client
}

func NewSpeech(apiKey string) *Speech {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Speech{client: &client}
}

func (s *Speech) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("speech text is empty")
	}

	resp, err := s.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModelGPT4oMiniTTS,
		Voice:          openai.AudioSpeechNewParamsVoiceAlloy,
		Input:          text,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatPCM,
	})
	if err != nil {
		return nil, fmt.Errorf("openai speech error: %w", err)
	}
	defer resp.Body.Close()

	pcm, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read speech audio: %w", err)
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("empty speech audio")
	}
	return pcmToWAV(pcm), nil
}

// pcmToWAV wraps raw PCM16 samples in a RIFF/WAVE header so the result plays
// in any browser audio element.
func pcmToWAV(pcm []byte) []byte {
	const headerSize = 44
	byteRate := pcmSampleRate * pcmChannels * pcmBitsPerSample / 8
	blockAlign := pcmChannels * pcmBitsPerSample / 8

	buf := make([]byte, headerSize+len(pcm))
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+len(pcm)))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16) // PCM fmt chunk size
	binary.LittleEndian.PutUint16(buf[20:22], 1)  // audio format: PCM
	binary.LittleEndian.PutUint16(buf[22:24], pcmChannels)
	binary.LittleEndian.PutUint32(buf[24:28], pcmSampleRate)
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], pcmBitsPerSample)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(len(pcm)))
	copy(buf[headerSize:], pcm)
	return buf
}
