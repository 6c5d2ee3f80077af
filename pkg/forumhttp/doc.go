// Package forumhttp exposes forum screens over net/http. Each request gets
// its own view: the path selects the screen and layout, query parameters
// select the sub-template, teaser and embedded modes, and the recorded
// status and cache headers are written before the body.
package forumhttp
