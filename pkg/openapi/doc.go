// Package openapi describes the dynamic form HTTP surface as an OpenAPI 3
// document. Each registered form type becomes a component schema so clients
// can discover fields, kinds and required flags without scraping the page.
package openapi
