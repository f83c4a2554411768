package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sigcat/sigcat/pkg/pagination"
)

// Handler exposes the query service and import administration over HTTP.
// It is a thin translation layer: absent nodes become 404, invalid
// competence input becomes 400, and store failures become 500.
type Handler struct {
	query    *QueryService
	registry *Registry
	importer *Importer
}

func NewHandler(query *QueryService, registry *Registry, importer *Importer) *Handler {
	return &Handler{query: query, registry: registry, importer: importer}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/catalog/:competence", h.GetCompetence)
	api.DELETE("/catalog/:competence", h.DeleteCompetence)
	api.GET("/catalog/:competence/groups", h.ListGroups)
	api.GET("/catalog/:competence/groups/:group", h.GetGroup)
	api.GET("/catalog/:competence/groups/:group/subgroups", h.ListSubGroups)
	api.GET("/catalog/:competence/groups/:group/subgroups/:subgroup", h.GetSubGroup)
	api.GET("/catalog/:competence/groups/:group/subgroups/:subgroup/forms", h.ListForms)
	api.GET("/catalog/:competence/groups/:group/subgroups/:subgroup/forms/:form", h.GetForm)
	api.GET("/catalog/:competence/groups/:group/subgroups/:subgroup/forms/:form/procedures", h.ListProcedures)
	api.GET("/catalog/:competence/groups/:group/subgroups/:subgroup/forms/:form/procedures/:procedure", h.GetProcedure)
	api.GET("/catalog/:competence/procedures", h.SearchProcedures)
	api.GET("/catalog/:competence/lookups/:lookup", h.ListLookupItems)

	api.GET("/imports", h.ListImports)
	api.POST("/imports", h.RunImport)
	api.DELETE("/imports/:id", h.DeleteImport)
}

func (h *Handler) GetCompetence(c echo.Context) error {
	root, err := h.registry.GetCompetenceRoot(c.Request().Context(), c.Param("competence"))
	if err != nil {
		return translateErr(err)
	}
	if root == nil {
		return echo.NewHTTPError(http.StatusNotFound, "competence not found")
	}
	return c.JSON(http.StatusOK, root)
}

func (h *Handler) DeleteCompetence(c echo.Context) error {
	result, err := h.registry.DeleteCompetenceRoot(c.Request().Context(), c.Param("competence"))
	if err != nil {
		return translateErr(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) ListGroups(c echo.Context) error {
	groups, err := h.query.GetGroups(c.Request().Context(), c.Param("competence"))
	if err != nil {
		return translateErr(err)
	}
	return c.JSON(http.StatusOK, groups)
}

func (h *Handler) GetGroup(c echo.Context) error {
	g, err := h.query.GetGroup(c.Request().Context(), c.Param("competence"), c.Param("group"))
	if err != nil {
		return translateErr(err)
	}
	if g == nil {
		return echo.NewHTTPError(http.StatusNotFound, "group not found")
	}
	return c.JSON(http.StatusOK, g)
}

func (h *Handler) ListSubGroups(c echo.Context) error {
	subGroups, err := h.query.GetSubGroups(c.Request().Context(), c.Param("competence"), c.Param("group"))
	if err != nil {
		return translateErr(err)
	}
	return c.JSON(http.StatusOK, subGroups)
}

func (h *Handler) GetSubGroup(c echo.Context) error {
	sg, err := h.query.GetSubGroup(c.Request().Context(),
		c.Param("competence"), c.Param("group"), c.Param("subgroup"))
	if err != nil {
		return translateErr(err)
	}
	if sg == nil {
		return echo.NewHTTPError(http.StatusNotFound, "subgroup not found")
	}
	return c.JSON(http.StatusOK, sg)
}

func (h *Handler) ListForms(c echo.Context) error {
	forms, err := h.query.GetForms(c.Request().Context(),
		c.Param("competence"), c.Param("group"), c.Param("subgroup"))
	if err != nil {
		return translateErr(err)
	}
	return c.JSON(http.StatusOK, forms)
}

func (h *Handler) GetForm(c echo.Context) error {
	f, err := h.query.GetForm(c.Request().Context(),
		c.Param("competence"), c.Param("group"), c.Param("subgroup"), c.Param("form"))
	if err != nil {
		return translateErr(err)
	}
	if f == nil {
		return echo.NewHTTPError(http.StatusNotFound, "form not found")
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) ListProcedures(c echo.Context) error {
	procedures, err := h.query.GetProcedures(c.Request().Context(),
		c.Param("competence"), c.Param("group"), c.Param("subgroup"), c.Param("form"))
	if err != nil {
		return translateErr(err)
	}
	return c.JSON(http.StatusOK, procedures)
}

func (h *Handler) GetProcedure(c echo.Context) error {
	p, err := h.query.GetProcedure(c.Request().Context(),
		c.Param("competence"), c.Param("group"), c.Param("subgroup"),
		c.Param("form"), c.Param("procedure"))
	if err != nil {
		return translateErr(err)
	}
	if p == nil {
		return echo.NewHTTPError(http.StatusNotFound, "procedure not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) SearchProcedures(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	procedures, err := h.query.SearchProcedures(c.Request().Context(),
		c.Param("competence"), c.QueryParam("term"), limit)
	if err != nil {
		return translateErr(err)
	}
	return c.JSON(http.StatusOK, procedures)
}

func (h *Handler) ListLookupItems(c echo.Context) error {
	items, err := h.query.GetLookupItems(c.Request().Context(),
		c.Param("competence"), c.Param("lookup"))
	if err != nil {
		return translateErr(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListImports(c echo.Context) error {
	pg := pagination.FromContext(c)
	records, err := h.registry.ListHistory(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	total := len(records)
	if pg.Offset >= total {
		return c.JSON(http.StatusOK, pagination.NewResponse([]ImportRecord{}, total, pg.Limit, pg.Offset))
	}
	end := pg.Offset + pg.Limit
	if end > total {
		end = total
	}
	page := records[pg.Offset:end]
	return c.JSON(http.StatusOK, pagination.NewResponse(page, total, pg.Limit, pg.Offset))
}

func (h *Handler) RunImport(c echo.Context) error {
	var body struct {
		Tree             Tree   `json:"tree"`
		ImportedBy       string `json:"imported_by"`
		SourceDescriptor string `json:"source_descriptor"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	meta := ImportMeta{ImportedBy: body.ImportedBy, SourceDescriptor: body.SourceDescriptor}
	rec, err := h.importer.RunImport(c.Request().Context(), &body.Tree, meta)
	if err != nil {
		if errors.Is(err, ErrInvalidCompetence) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if errors.Is(err, ErrImportInProgress) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		// The attempt failed but was recorded; return the failed record.
		return c.JSON(http.StatusUnprocessableEntity, rec)
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) DeleteImport(c echo.Context) error {
	if err := h.registry.DeleteHistory(c.Request().Context(), c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func translateErr(err error) error {
	if errors.Is(err, ErrInvalidCompetence) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
