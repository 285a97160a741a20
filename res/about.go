package res

// AboutContent contains the Markdown content for the About dialog.
const AboutContent = `A real-time audio visualizer built with Go and Fyne.

**Modes:** Bars, Wave, Circular, Galaxy, DNA, Fireworks, Matrix, Rings, Mountains, Blob.

**Keys:**
- Space: play / pause
- F or double-click: fullscreen, Esc to leave
- 1-9, 0: pick a mode
- Alt+Up / Alt+Down: volume

Plays MP3, WAV, OGG and FLAC from disk or over HTTP(S).
`
