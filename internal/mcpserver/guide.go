package mcpserver

// JournalingGuide describes how entries are classified and what the
// emotion fields mean, for LLM consumers writing entries on behalf of a user.
const JournalingGuide = `# MindMate Journaling Guide

MindMate is a personal journal with emotion analysis. Every entry written
through the ` + "`add_entry`" + ` tool is classified and answered with a short
reflection.

## Writing entries

1. **First person, present tense.** Entries are the user's own words:
   "I felt overwhelmed during the meeting", not "The user was overwhelmed".
2. **One moment per entry.** Keep each entry about a single situation or
   feeling; split unrelated topics into separate entries.
3. **Length.** Entries must be non-empty and at most 5000 characters.
4. **Do not pre-label emotions.** Write the experience; classification is
   the service's job.

## Reading the classification

Each entry carries an ` + "`emotion`" + ` (the primary label) and an
` + "`emotion_metadata`" + ` object:

- ` + "`all_scores`" + ` - confidence per emotion label, 0.0 to 1.0.
- ` + "`significant_emotions`" + ` - the labels scoring above 0.3, strongest first.
- ` + "`is_mixed`" + ` - two or more significant emotions at once.
- ` + "`has_confusion`" + ` - confusion is among the significant emotions.
- ` + "`emotional_state`" + ` - one of ` + "`clear`" + `, ` + "`mixed`" + `,
  ` + "`confused`" + `, ` + "`confused_mixed`" + `.

The ` + "`display`" + ` object is the render-ready summary: when the user asks
how an entry was read, use its headline and breakdown rather than raw scores.

## Statistics

` + "`mood_stats`" + ` aggregates the recent window (default 7 days):
distribution percentages, the most common emotion, the share of positive
emotions (joy, surprise, love, happiness, excitement) and the streak of
consecutive days with at least one entry, counted in the user's timezone.
A streak is only non-zero when today has an entry.

## Privacy

Entries may contain sensitive personal content. Never quote an entry back
outside the journaling conversation, and never store entry text elsewhere.
`
