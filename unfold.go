// Package unfold provides a page-interaction behavior engine for web
// archiving. Given a loaded page, it dismisses consent dialogs, expands
// paginated, filtered and "load more" sections and chart menus, and reports
// progress so that a capture taken afterwards records the fully rendered page.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, goquery/, sqlite/, yaml/).
package unfold
