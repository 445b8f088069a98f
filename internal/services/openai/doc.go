// Package openai implements transcription.Transcriber on top of the OpenAI
// audio API (or any server exposing the same /audio endpoints).
//
// Translation requests go to /audio/translations and never carry a language
// hint; transcription requests go to /audio/transcriptions with the optional
// hint. The client performs no retries.
package openai
