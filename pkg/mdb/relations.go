package mdb

// Well-known relation names used by the mdb link sections.
const (
	RelSelf = "self"

	RelSubjects     = "http://id.nrk.no/2016/mdb/relation/subjects"
	RelReferences   = "http://id.nrk.no/2016/mdb/relation/references"
	RelCategories   = "http://id.nrk.no/2016/mdb/relation/categories"
	RelContributors = "http://id.nrk.no/2016/mdb/relation/contributors"
	RelLocations    = "http://id.nrk.no/2016/mdb/relation/locations"
	RelDocuments    = "http://id.nrk.no/2016/mdb/relation/documents"
	RelFormats      = "http://id.nrk.no/2016/mdb/relation/formats"
	RelLocators     = "http://id.nrk.no/2016/mdb/relation/locators"
	RelItems        = "http://id.nrk.no/2017/mdb/relation/items"
)

// Main type URIs carried in the "type" field of resource representations.
const (
	TypeMasterEO               = "http://id.nrk.no/2016/mdb/types/MasterEditorialObject"
	TypeMediaObject            = "http://id.nrk.no/2016/mdb/types/MediaObject"
	TypePublicationMediaObject = "http://id.nrk.no/2016/mdb/types/PublicationMediaObject"
	TypeMediaResource          = "http://id.nrk.no/2016/mdb/types/MediaResource"
	TypeEssence                = "http://id.nrk.no/2016/mdb/types/Essence"
	TypePublicationEvent       = "http://id.nrk.no/2016/mdb/types/PublicationEvent"
	TypeVersionGroup           = "http://id.nrk.no/2016/mdb/types/VersionGroup"
	TypeMasterEOResource       = "http://id.nrk.no/2016/mdb/types/MasterEOResource"
)

// Timeline type URIs.
const (
	TimelineTypeRights          = "http://id.nrk.no/2017/mdb/timelinetype/Rights"
	TimelineTypeIndexPoints     = "http://id.nrk.no/2017/mdb/timelinetype/IndexPoints"
	TimelineTypeGenealogy       = "http://id.nrk.no/2017/mdb/timelinetype/Genealogy"
	TimelineTypeGenealogyRights = "http://id.nrk.no/2017/mdb/timelinetype/GenealogyRights"
	TimelineTypeTechnical       = "http://id.nrk.no/2017/mdb/timelinetype/Technical"
	TimelineTypeInternal        = "http://id.nrk.no/2017/mdb/timelinetype/Internal"
)

// Timeline item type URIs.
const (
	TimelineItemExtractedVersion  = "http://id.nrk.no/2017/mdb/timelineitem/ExtractedVersionTimelineItem"
	TimelineItemExploitationIssue = "http://id.nrk.no/2017/mdb/timelineitem/ExploitationIssueTimelineItem"
	TimelineItemGeneralRights     = "http://id.nrk.no/2017/mdb/timelineitem/GeneralRightsTimelineItem"
	TimelineItemIndexPoint        = "http://id.nrk.no/2017/mdb/timelineitem/IndexpointTimelineItem"
	TimelineItemInternal          = "http://id.nrk.no/2017/mdb/timelineitem/InternalTimelineItem"
	TimelineItemTechnical         = "http://id.nrk.no/2017/mdb/timelineitem/TechnicalTimelineItem"
)
