// Package timetable provides the read-only reference data of the class timetable.
//
// This package is responsible for:
//   - Subjects, teachers, lesson types and schedule entries
//   - Week numbering and parity relative to a configured epoch week
//   - Parsing the contact markup stored with each teacher
//
// Nothing in this package mutates the timetable. The data is loaded by
// administrators out of band and only queried by the bot.
package timetable
