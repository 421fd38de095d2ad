// Command polysynth plays the synthesizer from a window, a terminal or a
// MIDI controller, or renders a scripted performance to a WAV file.
package main

func main() {
	Execute()
}
