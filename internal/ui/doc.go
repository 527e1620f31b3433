// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for the prompt-to-playlist pipeline:
//  1. [PromptView] : Describe the playlist in natural language
//  2. [PipelineView] : Monitor generation and catalog verification progress
//  3. [ReviewView] : Toggle verified tracks in or out of the final playlist
//  4. [ConfirmView] : Confirm the publish operation
//  5. [BuildView] : Monitor the publish progress
//  6. [ResultView] : Display the provider id or the failure
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the PipelineEngine, providing non-blocking status reporting.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, space, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
