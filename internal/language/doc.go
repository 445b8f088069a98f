// Package language validates caller language hints and maps the codes and
// names reported by transcription backends onto ISO 639-1.
//
// Hints must already be two-letter codes; NormalizeHint rejects anything else
// with an InvalidInput error. Backend output is looser (whisper servers
// report "french" as often as "fr"), so ToISO2 accepts two-letter codes,
// three-letter codes and English language names.
package language
