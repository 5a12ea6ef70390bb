package browser

// jsHelpers is prepended to every script evaluated on a page. query()
// understands deep selectors: a plain selector is matched inside every
// shadow root, and "host >>> inner" searches inner below each host's shadow
// root and light DOM. byID() walks elements in the same order flatten()
// writes them and also accepts "id#n" for the nth element sharing id.
const jsHelpers = `
const roots = (scope) => {
	const out = [scope];
	const walk = (node) => {
		for (const el of node.querySelectorAll('*')) {
			if (el.shadowRoot) { out.push(el.shadowRoot); walk(el.shadowRoot); }
		}
	};
	walk(scope);
	return out;
};
const deepAll = (sel, scope, seen) => {
	const found = [];
	for (const r of roots(scope)) {
		for (const el of r.querySelectorAll(sel)) {
			if (!seen.has(el)) { seen.add(el); found.push(el); }
		}
	}
	return found;
};
const query = (sel) => {
	const parts = sel.split('>>>').map((s) => s.trim()).filter(Boolean);
	if (parts.length === 0) return [];
	let scopes = [document];
	for (const part of parts) {
		const seen = new Set();
		const next = [];
		for (const s of scopes) {
			const bases = s.shadowRoot ? [s.shadowRoot, s] : [s];
			for (const b of bases) next.push(...deepAll(part, b, seen));
		}
		scopes = next;
	}
	return scopes;
};
const flatOrder = (node, out) => {
	if (node.nodeType !== Node.ELEMENT_NODE) return out;
	out.push(node);
	if (node.shadowRoot) for (const c of node.shadowRoot.children) flatOrder(c, out);
	for (const c of node.children) flatOrder(c, out);
	return out;
};
const byID = (id) => {
	const all = flatOrder(document.body || document.documentElement, []);
	const exact = all.find((el) => el.id === id);
	if (exact) return exact;
	const m = /^(.*)#(\d+)$/.exec(id);
	if (!m) return null;
	return all.filter((el) => el.id === m[1])[Number(m[2]) - 1] || null;
};
const hasShadow = (el) => !!el.shadowRoot || Array.from(el.querySelectorAll('*')).some((e) => e.shadowRoot);
const BLOCK = /^(block|flex|grid|list-item|table|table-row|flow-root)/;
const deepText = (node) => {
	if (node.nodeType === Node.TEXT_NODE) return node.textContent;
	if (node.nodeType !== Node.ELEMENT_NODE) return '';
	const tag = node.localName;
	if (tag === 'script' || tag === 'style' || tag === 'template') return '';
	const st = getComputedStyle(node);
	if (st.display === 'none' || st.visibility === 'hidden') return '';
	let s = '';
	if (node.shadowRoot) for (const c of node.shadowRoot.childNodes) s += deepText(c);
	for (const c of node.childNodes) s += deepText(c);
	if (tag === 'br') return '\n';
	return BLOCK.test(st.display) ? '\n' + s + '\n' : s;
};
const textOf = (el) => {
	if (!hasShadow(el)) return el.innerText || el.textContent || '';
	return deepText(el).replace(/[ \t]+\n/g, '\n').replace(/\n{3,}/g, '\n\n');
};
const VOID = new Set(['area', 'base', 'br', 'col', 'embed', 'hr', 'img', 'input', 'link', 'meta', 'source', 'track', 'wbr']);
const esc = (s) => s.replace(/&/g, '&amp;').replace(/</g, '&lt;').replace(/>/g, '&gt;');
const flatten = (node) => {
	if (node.nodeType === Node.TEXT_NODE) return esc(node.textContent);
	if (node.nodeType !== Node.ELEMENT_NODE) return '';
	const tag = node.localName;
	if (tag === 'script' || tag === 'style') return '';
	let s = '<' + tag;
	for (const a of node.attributes) s += ' ' + a.name + '="' + esc(a.value).replace(/"/g, '&quot;') + '"';
	if (node.disabled === true && !node.hasAttribute('disabled')) s += ' disabled';
	s += '>';
	if (VOID.has(tag)) return s;
	if (node.shadowRoot) for (const c of node.shadowRoot.childNodes) s += flatten(c);
	for (const c of node.childNodes) s += flatten(c);
	return s + '</' + tag + '>';
};
const describe = (el) => {
	if (!el || !el.localName) return '';
	let s = '<' + el.localName;
	if (el.id) s += '#' + el.id;
	for (const c of el.classList) s += '.' + c;
	return s + '>';
};
`

func script(params, body string) string {
	return "(" + params + ") => {" + jsHelpers + body + "}"
}

var (
	jsAlive    = `() => 1`
	jsTitle    = `() => document.title`
	jsHasFocus = `() => document.hasFocus()`

	jsExists = script("sel", `return query(sel).length > 0;`)

	jsText = script("sel", `
		const el = query(sel)[0];
		return JSON.stringify(el ? {found: true, value: textOf(el)} : {found: false});`)

	jsHTML = script("sel", `
		const el = query(sel)[0];
		return JSON.stringify(el ? {found: true, value: flatten(el)} : {found: false});`)

	jsElement = script("sel", `return query(sel)[0] || null;`)

	jsElementByID = script("id", `return byID(id);`)

	jsProbe = script("sel", `
		const el = query(sel)[0];
		if (!el) return JSON.stringify({found: false, enabled: false});
		const enabled = !el.disabled && el.getAttribute('aria-disabled') !== 'true';
		return JSON.stringify({found: true, enabled});`)

	jsButtonWithText = script("labels", `
		for (const b of query('button')) {
			const text = (b.innerText || b.textContent || '').trim();
			if (labels.includes(text)) return b;
		}
		return null;`)

	jsInspect = script("sel, limit", `
		const all = query(sel);
		const elements = all.slice(0, limit).map((el) => {
			const r = el.getBoundingClientRect();
			const st = getComputedStyle(el);
			const attributes = {};
			for (const a of el.attributes) attributes[a.name] = a.value;
			const root = el.getRootNode();
			const parent = el.parentElement || (root && root.host) || null;
			return {
				tag: el.localName,
				id: el.id || '',
				classes: Array.from(el.classList),
				attributes,
				text: (textOf(el) || '').trim(),
				x: r.x, y: r.y, width: r.width, height: r.height,
				enabled: !el.disabled && el.getAttribute('aria-disabled') !== 'true',
				visible: r.width > 0 && r.height > 0 && st.visibility !== 'hidden' && st.display !== 'none',
				parent: describe(parent),
			};
		});
		return JSON.stringify({count: all.length, elements});`)
)
