// Package config provides the path-resolution and atomic-write
// machinery shared by the GigE-Vision and Mitsubishi-MC configuration
// registries (config/gige and config/mc).
//
// Each registry is a YAML file under an OS-appropriate configuration
// directory:
//   - Linux: $XDG_CONFIG_HOME/protosim/<name> or $HOME/.config/protosim/<name>
//   - macOS: $HOME/.config/protosim/<name>
//   - Windows: %LOCALAPPDATA%\protosim\<name>
//
// Writes are atomic: content is written to a temp file and renamed into
// place, so a crash mid-write never leaves a truncated registry behind.
package config
