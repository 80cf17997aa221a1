// SPDX-License-Identifier: MPL-2.0

// Package config loads packmk settings using Viper with CUE as the file format.
//
// Sources are layered, later ones winning:
//
//  1. Built-in defaults (DefaultConfig)
//  2. The user file: $XDG_CONFIG_HOME/packmk/config.cue (platform equivalent on
//     macOS and Windows), or the file named by LoadOptions.ConfigFilePath
//  3. The project file packmk.cue in LoadOptions.ProjectDir
//  4. PACKMK_* environment variables (PACKMK_OUTPUT_DIR, PACKMK_UI_VERBOSE, ...)
//
// Every file is validated against the embedded #Config schema before it is
// merged, so unknown keys and wrongly typed values are reported with their path.
package config
