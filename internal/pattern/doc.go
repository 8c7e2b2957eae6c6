// CourseForge - Course Pattern Analytics and Quality Tracking
// Copyright 2026 CourseForge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/courseforge/courseforge

// Package pattern implements the pattern library core: course feature
// extraction, fingerprinting and version lineage, success statistics, and
// similarity-based matching against a library of captured patterns.
//
// All functions here are pure transformations over PatternRecord values.
// They never touch storage; the store package applies them under its
// optimistic-concurrency discipline.
package pattern
