// Package nws decodes the WMO teletype envelope shared by every National
// Weather Service text product and holds the types the product parsers
// have in common: the Product itself, the local time resolver, the
// injected location providers, notifications and the persistence handle.
//
// Dialect parsers live in the sub-packages (lsr, sigmet, nhc, metar, nldn,
// vtec) and are selected by package dispatch.
package nws
