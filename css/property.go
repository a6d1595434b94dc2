package css

import "strings"

// PropertyID identifies a CSS property the style store can hold.
// Shorthands exist only for name dispatch; the store always contains
// longhand values.
type PropertyID int

const (
	// PropNone is the zero value.
	PropNone PropertyID = iota

	// Internal longhands produced by shorthand expansion.
	PropBorderSpacingX
	PropBorderSpacingY
	PropBackgroundImageBaseurl
	PropListStyleImageBaseurl

	PropBackgroundAttachment
	PropBackgroundClip
	PropBackgroundColor
	PropBackgroundImage
	PropBackgroundOrigin
	PropBackgroundPosition
	PropBackgroundRepeat
	PropBackgroundSize

	PropBorderBottomColor
	PropBorderBottomStyle
	PropBorderBottomWidth
	PropBorderLeftColor
	PropBorderLeftStyle
	PropBorderLeftWidth
	PropBorderRightColor
	PropBorderRightStyle
	PropBorderRightWidth
	PropBorderTopColor
	PropBorderTopStyle
	PropBorderTopWidth

	PropBorderBottomLeftRadiusX
	PropBorderBottomLeftRadiusY
	PropBorderBottomRightRadiusX
	PropBorderBottomRightRadiusY
	PropBorderTopLeftRadiusX
	PropBorderTopLeftRadiusY
	PropBorderTopRightRadiusX
	PropBorderTopRightRadiusY

	PropBorderCollapse
	PropBottom
	PropBoxSizing
	PropClear
	PropColor
	PropContent
	PropCursor
	PropDisplay
	PropFloat
	PropFontFamily
	PropFontSize
	PropFontStyle
	PropFontVariant
	PropFontWeight
	PropHeight
	PropLeft
	PropLineHeight
	PropListStyleImage
	PropListStylePosition
	PropListStyleType
	PropMarginBottom
	PropMarginLeft
	PropMarginRight
	PropMarginTop
	PropMaxHeight
	PropMaxWidth
	PropMinHeight
	PropMinWidth
	PropOverflow
	PropPaddingBottom
	PropPaddingLeft
	PropPaddingRight
	PropPaddingTop
	PropPosition
	PropRight
	PropTextAlign
	PropTextDecoration
	PropTextIndent
	PropTextTransform
	PropTop
	PropVerticalAlign
	PropVisibility
	PropWhiteSpace
	PropWidth
	PropZIndex

	// Shorthands: recognized by name, expanded at insertion.
	PropBackground
	PropBorder
	PropBorderBottom
	PropBorderLeft
	PropBorderRight
	PropBorderTop
	PropBorderColor
	PropBorderStyle
	PropBorderWidth
	PropBorderRadius
	PropBorderBottomLeftRadius
	PropBorderBottomRightRadius
	PropBorderTopLeftRadius
	PropBorderTopRightRadius
	PropBorderSpacing
	PropFont
	PropListStyle
	PropMargin
	PropPadding

	propMax
)

// ValueKind is the tagged type of a stored property value.
type ValueKind int

const (
	// KindString is an uninterpreted string (font-family, content, urls).
	KindString ValueKind = iota
	// KindColor is an RGBA color.
	KindColor
	// KindKeyword is an index into the property's keyword table.
	KindKeyword
	// KindLength is a length with unit or predefined keyword.
	KindLength
)

// Keyword indexes for the enumerated properties, in keyword-table
// order. Layout and style resolution switch on these.
const (
	DisplayNone = iota
	DisplayBlock
	DisplayInline
	DisplayInlineBlock
	DisplayInlineTable
	DisplayListItem
	DisplayTable
	DisplayTableCaption
	DisplayTableCell
	DisplayTableColumn
	DisplayTableColumnGroup
	DisplayTableFooterGroup
	DisplayTableHeaderGroup
	DisplayTableRow
	DisplayTableRowGroup
	DisplayInlineText
)

const (
	PositionStatic = iota
	PositionRelative
	PositionAbsolute
	PositionFixed
)

const (
	FloatNone = iota
	FloatLeft
	FloatRight
)

const (
	ClearNone = iota
	ClearLeft
	ClearRight
	ClearBoth
)

const (
	TextAlignLeft = iota
	TextAlignRight
	TextAlignCenter
	TextAlignJustify
)

const (
	VAlignBaseline = iota
	VAlignSub
	VAlignSuper
	VAlignTop
	VAlignTextTop
	VAlignMiddle
	VAlignBottom
	VAlignTextBottom
)

const (
	OverflowVisible = iota
	OverflowHidden
	OverflowScroll
	OverflowAuto
)

const (
	WhiteSpaceNormal = iota
	WhiteSpaceNowrap
	WhiteSpacePre
	WhiteSpacePreLine
	WhiteSpacePreWrap
)

const (
	BorderStyleNone = iota
	BorderStyleHidden
	BorderStyleDotted
	BorderStyleDashed
	BorderStyleSolid
	BorderStyleDouble
	BorderStyleGroove
	BorderStyleRidge
	BorderStyleInset
	BorderStyleOutset
)

const (
	BackgroundAttachmentScroll = iota
	BackgroundAttachmentFixed
)

const (
	BackgroundRepeatRepeat = iota
	BackgroundRepeatRepeatX
	BackgroundRepeatRepeatY
	BackgroundRepeatNoRepeat
)

const (
	BackgroundBoxBorder = iota
	BackgroundBoxPadding
	BackgroundBoxContent
)

const (
	ListStyleTypeNone = iota
	ListStyleTypeCircle
	ListStyleTypeDisc
	ListStyleTypeSquare
	ListStyleTypeDecimal
	ListStyleTypeDecimalLeadingZero
	ListStyleTypeLowerAlpha
	ListStyleTypeLowerGreek
	ListStyleTypeLowerLatin
	ListStyleTypeLowerRoman
	ListStyleTypeUpperAlpha
	ListStyleTypeUpperLatin
	ListStyleTypeUpperRoman
	ListStyleTypeArmenian
	ListStyleTypeGeorgian
	ListStyleTypeHebrew
	ListStyleTypeCjkIdeographic
	ListStyleTypeHiragana
	ListStyleTypeHiraganaIroha
	ListStyleTypeKatakana
	ListStyleTypeKatakanaIroha
)

const (
	ListStylePositionOutside = iota
	ListStylePositionInside
)

const (
	FontStyleNormal = iota
	FontStyleItalic
	FontStyleOblique
)

const (
	FontVariantNormal = iota
	FontVariantSmallCaps
)

const (
	FontWeightNormal = iota
	FontWeightBold
	FontWeightBolder
	FontWeightLighter
	FontWeight100
	FontWeight200
	FontWeight300
	FontWeight400
	FontWeight500
	FontWeight600
	FontWeight700
	FontWeight800
	FontWeight900
)

const (
	TextDecorationNone = iota
	TextDecorationUnderline
	TextDecorationOverline
	TextDecorationLineThrough
)

const (
	TextTransformNone = iota
	TextTransformCapitalize
	TextTransformUppercase
	TextTransformLowercase
)

const (
	VisibilityVisible = iota
	VisibilityHidden
	VisibilityCollapse
)

const (
	BorderCollapseSeparate = iota
	BorderCollapseCollapse
)

const (
	BoxSizingContentBox = iota
	BoxSizingBorderBox
)

// Predefined-keyword lists the length-valued properties parse against.
// Indexes are meaningful to callers of Length.Predef.
const (
	LengthPredefsAuto     = "auto"
	LengthPredefsNone     = "none"
	LengthPredefsNormal   = "normal"
	LengthPredefsBorder   = "thin;medium;thick"
	LengthPredefsFontSize = "xx-small;x-small;small;medium;large;x-large;xx-large;smaller;larger"
)

// Border width predefined indexes.
const (
	BorderWidthThin = iota
	BorderWidthMedium
	BorderWidthThick
)

// Font size predefined indexes.
const (
	FontSizeXXSmall = iota
	FontSizeXSmall
	FontSizeSmall
	FontSizeMedium
	FontSizeLarge
	FontSizeXLarge
	FontSizeXXLarge
	FontSizeSmaller
	FontSizeLarger
)

// PropertyInfo is the metadata row of one property: its name, default
// value, inheritance flag, value type and keyword table.
type PropertyInfo struct {
	Name      string
	Default   string
	Inherited bool
	Kind      ValueKind
	Keywords  string // semicolon-separated; index is the keyword token
	Predefs   string // predefined keywords for KindLength properties
}

// propertyTable is the single declarative description of every
// longhand property.
var propertyTable = map[PropertyID]PropertyInfo{
	PropBorderSpacingX:         {Name: "-flint-border-spacing-x", Default: "0", Inherited: true, Kind: KindLength},
	PropBorderSpacingY:         {Name: "-flint-border-spacing-y", Default: "0", Inherited: true, Kind: KindLength},
	PropBackgroundImageBaseurl: {Name: "background-image-baseurl", Default: "", Kind: KindString},
	PropListStyleImageBaseurl:  {Name: "list-style-image-baseurl", Default: "", Inherited: true, Kind: KindString},

	PropBackgroundAttachment: {Name: "background-attachment", Default: "scroll", Kind: KindKeyword, Keywords: "scroll;fixed"},
	PropBackgroundClip:       {Name: "background-clip", Default: "border-box", Kind: KindKeyword, Keywords: "border-box;padding-box;content-box"},
	PropBackgroundColor:      {Name: "background-color", Default: "transparent", Kind: KindColor},
	PropBackgroundImage:      {Name: "background-image", Default: "", Kind: KindString},
	PropBackgroundOrigin:     {Name: "background-origin", Default: "padding-box", Kind: KindKeyword, Keywords: "border-box;padding-box;content-box"},
	PropBackgroundPosition:   {Name: "background-position", Default: "0% 0%", Kind: KindString},
	PropBackgroundRepeat:     {Name: "background-repeat", Default: "repeat", Kind: KindKeyword, Keywords: "repeat;repeat-x;repeat-y;no-repeat"},
	PropBackgroundSize:       {Name: "background-size", Default: "auto", Kind: KindString},

	PropBorderBottomColor: {Name: "border-bottom-color", Default: "currentcolor", Kind: KindColor},
	PropBorderBottomStyle: {Name: "border-bottom-style", Default: "none", Kind: KindKeyword, Keywords: borderStyleKeywords},
	PropBorderBottomWidth: {Name: "border-bottom-width", Default: "medium", Kind: KindLength, Predefs: LengthPredefsBorder},
	PropBorderLeftColor:   {Name: "border-left-color", Default: "currentcolor", Kind: KindColor},
	PropBorderLeftStyle:   {Name: "border-left-style", Default: "none", Kind: KindKeyword, Keywords: borderStyleKeywords},
	PropBorderLeftWidth:   {Name: "border-left-width", Default: "medium", Kind: KindLength, Predefs: LengthPredefsBorder},
	PropBorderRightColor:  {Name: "border-right-color", Default: "currentcolor", Kind: KindColor},
	PropBorderRightStyle:  {Name: "border-right-style", Default: "none", Kind: KindKeyword, Keywords: borderStyleKeywords},
	PropBorderRightWidth:  {Name: "border-right-width", Default: "medium", Kind: KindLength, Predefs: LengthPredefsBorder},
	PropBorderTopColor:    {Name: "border-top-color", Default: "currentcolor", Kind: KindColor},
	PropBorderTopStyle:    {Name: "border-top-style", Default: "none", Kind: KindKeyword, Keywords: borderStyleKeywords},
	PropBorderTopWidth:    {Name: "border-top-width", Default: "medium", Kind: KindLength, Predefs: LengthPredefsBorder},

	PropBorderBottomLeftRadiusX:  {Name: "border-bottom-left-radius-x", Default: "0", Kind: KindLength},
	PropBorderBottomLeftRadiusY:  {Name: "border-bottom-left-radius-y", Default: "0", Kind: KindLength},
	PropBorderBottomRightRadiusX: {Name: "border-bottom-right-radius-x", Default: "0", Kind: KindLength},
	PropBorderBottomRightRadiusY: {Name: "border-bottom-right-radius-y", Default: "0", Kind: KindLength},
	PropBorderTopLeftRadiusX:     {Name: "border-top-left-radius-x", Default: "0", Kind: KindLength},
	PropBorderTopLeftRadiusY:     {Name: "border-top-left-radius-y", Default: "0", Kind: KindLength},
	PropBorderTopRightRadiusX:    {Name: "border-top-right-radius-x", Default: "0", Kind: KindLength},
	PropBorderTopRightRadiusY:    {Name: "border-top-right-radius-y", Default: "0", Kind: KindLength},

	PropBorderCollapse: {Name: "border-collapse", Default: "separate", Inherited: true, Kind: KindKeyword, Keywords: "separate;collapse"},
	PropBottom:         {Name: "bottom", Default: "auto", Kind: KindLength, Predefs: LengthPredefsAuto},
	PropBoxSizing:      {Name: "box-sizing", Default: "content-box", Kind: KindKeyword, Keywords: "content-box;border-box"},
	PropClear:          {Name: "clear", Default: "none", Kind: KindKeyword, Keywords: "none;left;right;both"},
	PropColor:          {Name: "color", Default: "black", Inherited: true, Kind: KindColor},
	PropContent:        {Name: "content", Default: "", Kind: KindString},
	PropCursor:         {Name: "cursor", Default: "auto", Inherited: true, Kind: KindString},
	PropDisplay:        {Name: "display", Default: "inline", Kind: KindKeyword, Keywords: "none;block;inline;inline-block;inline-table;list-item;table;table-caption;table-cell;table-column;table-column-group;table-footer-group;table-header-group;table-row;table-row-group;inline-text"},
	PropFloat:          {Name: "float", Default: "none", Kind: KindKeyword, Keywords: "none;left;right"},
	PropFontFamily:     {Name: "font-family", Default: "inherit", Inherited: true, Kind: KindString},
	PropFontSize:       {Name: "font-size", Default: "medium", Inherited: true, Kind: KindLength, Predefs: LengthPredefsFontSize},
	PropFontStyle:      {Name: "font-style", Default: "normal", Inherited: true, Kind: KindKeyword, Keywords: "normal;italic;oblique"},
	PropFontVariant:    {Name: "font-variant", Default: "normal", Inherited: true, Kind: KindKeyword, Keywords: "normal;small-caps"},
	PropFontWeight:     {Name: "font-weight", Default: "normal", Inherited: true, Kind: KindKeyword, Keywords: "normal;bold;bolder;lighter;100;200;300;400;500;600;700;800;900"},
	PropHeight:         {Name: "height", Default: "auto", Kind: KindLength, Predefs: LengthPredefsAuto},
	PropLeft:           {Name: "left", Default: "auto", Kind: KindLength, Predefs: LengthPredefsAuto},
	PropLineHeight:     {Name: "line-height", Default: "normal", Inherited: true, Kind: KindLength, Predefs: LengthPredefsNormal},
	PropListStyleImage: {Name: "list-style-image", Default: "", Inherited: true, Kind: KindString},
	PropListStylePosition: {Name: "list-style-position", Default: "outside", Inherited: true, Kind: KindKeyword,
		Keywords: "outside;inside"},
	PropListStyleType: {Name: "list-style-type", Default: "disc", Inherited: true, Kind: KindKeyword,
		Keywords: "none;circle;disc;square;decimal;decimal-leading-zero;lower-alpha;lower-greek;lower-latin;lower-roman;upper-alpha;upper-latin;upper-roman;armenian;georgian;hebrew;cjk-ideographic;hiragana;hiragana-iroha;katakana;katakana-iroha"},
	PropMarginBottom:  {Name: "margin-bottom", Default: "0", Kind: KindLength, Predefs: LengthPredefsAuto},
	PropMarginLeft:    {Name: "margin-left", Default: "0", Kind: KindLength, Predefs: LengthPredefsAuto},
	PropMarginRight:   {Name: "margin-right", Default: "0", Kind: KindLength, Predefs: LengthPredefsAuto},
	PropMarginTop:     {Name: "margin-top", Default: "0", Kind: KindLength, Predefs: LengthPredefsAuto},
	PropMaxHeight:     {Name: "max-height", Default: "none", Kind: KindLength, Predefs: LengthPredefsNone},
	PropMaxWidth:      {Name: "max-width", Default: "none", Kind: KindLength, Predefs: LengthPredefsNone},
	PropMinHeight:     {Name: "min-height", Default: "0", Kind: KindLength},
	PropMinWidth:      {Name: "min-width", Default: "0", Kind: KindLength},
	PropOverflow:      {Name: "overflow", Default: "visible", Kind: KindKeyword, Keywords: "visible;hidden;scroll;auto"},
	PropPaddingBottom: {Name: "padding-bottom", Default: "0", Kind: KindLength},
	PropPaddingLeft:   {Name: "padding-left", Default: "0", Kind: KindLength},
	PropPaddingRight:  {Name: "padding-right", Default: "0", Kind: KindLength},
	PropPaddingTop:    {Name: "padding-top", Default: "0", Kind: KindLength},
	PropPosition:      {Name: "position", Default: "static", Kind: KindKeyword, Keywords: "static;relative;absolute;fixed"},
	PropRight:         {Name: "right", Default: "auto", Kind: KindLength, Predefs: LengthPredefsAuto},
	PropTextAlign:     {Name: "text-align", Default: "left", Inherited: true, Kind: KindKeyword, Keywords: "left;right;center;justify"},
	PropTextDecoration: {Name: "text-decoration", Default: "none", Inherited: true, Kind: KindKeyword,
		Keywords: "none;underline;overline;line-through"},
	PropTextIndent: {Name: "text-indent", Default: "0", Inherited: true, Kind: KindLength},
	PropTextTransform: {Name: "text-transform", Default: "none", Inherited: true, Kind: KindKeyword,
		Keywords: "none;capitalize;uppercase;lowercase"},
	PropTop:           {Name: "top", Default: "auto", Kind: KindLength, Predefs: LengthPredefsAuto},
	PropVerticalAlign: {Name: "vertical-align", Default: "baseline", Kind: KindKeyword, Keywords: "baseline;sub;super;top;text-top;middle;bottom;text-bottom"},
	PropVisibility:    {Name: "visibility", Default: "visible", Inherited: true, Kind: KindKeyword, Keywords: "visible;hidden;collapse"},
	PropWhiteSpace:    {Name: "white-space", Default: "normal", Inherited: true, Kind: KindKeyword, Keywords: "normal;nowrap;pre;pre-line;pre-wrap"},
	PropWidth:         {Name: "width", Default: "auto", Kind: KindLength, Predefs: LengthPredefsAuto},
	PropZIndex:        {Name: "z-index", Default: "auto", Kind: KindLength, Predefs: LengthPredefsAuto},
}

const borderStyleKeywords = "none;hidden;dotted;dashed;solid;double;groove;ridge;inset;outset"

// shorthandNames maps shorthand property names to their IDs.
var shorthandNames = map[string]PropertyID{
	"background":                 PropBackground,
	"border":                     PropBorder,
	"border-bottom":              PropBorderBottom,
	"border-left":                PropBorderLeft,
	"border-right":               PropBorderRight,
	"border-top":                 PropBorderTop,
	"border-color":               PropBorderColor,
	"border-style":               PropBorderStyle,
	"border-width":               PropBorderWidth,
	"border-radius":              PropBorderRadius,
	"border-bottom-left-radius":  PropBorderBottomLeftRadius,
	"border-bottom-right-radius": PropBorderBottomRightRadius,
	"border-top-left-radius":     PropBorderTopLeftRadius,
	"border-top-right-radius":    PropBorderTopRightRadius,
	"border-spacing":             PropBorderSpacing,
	"font":                       PropFont,
	"list-style":                 PropListStyle,
	"margin":                     PropMargin,
	"padding":                    PropPadding,
}

// propertyByName is derived from the table once at init.
var propertyByName = func() map[string]PropertyID {
	m := make(map[string]PropertyID, len(propertyTable))
	for id, info := range propertyTable {
		m[info.Name] = id
	}
	return m
}()

// PropertyFromString resolves a property name; PropNone for unknown.
func PropertyFromString(name string) PropertyID {
	name = strings.ToLower(strings.TrimSpace(name))
	if id, ok := propertyByName[name]; ok {
		return id
	}
	if id, ok := shorthandNames[name]; ok {
		return id
	}
	return PropNone
}

// Property returns the metadata row for a longhand property.
func Property(id PropertyID) PropertyInfo {
	return propertyTable[id]
}

// PropertyInherited reports the property's inherited flag.
func PropertyInherited(id PropertyID) bool {
	return propertyTable[id].Inherited
}

// KeywordIndex resolves value against a semicolon-separated keyword
// list; -1 when absent.
func KeywordIndex(value, keywords string) int {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" || keywords == "" {
		return -1
	}
	for i, kw := range strings.Split(keywords, ";") {
		if kw == value {
			return i
		}
	}
	return -1
}

// ValueInList reports membership of value in a keyword list.
func ValueInList(value, keywords string) bool {
	return KeywordIndex(value, keywords) >= 0
}
